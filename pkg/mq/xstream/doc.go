// Package xstream 提供有界事件流发布和频道广播。
//
// 流写入 "STREAM:"+name，每条记录只有一个字段 payload，内容为编码后的载荷；
// 写入时要求存储把流裁剪到 MaxLen（默认 100000），最旧的记录被丢弃。
// 默认精确裁剪，WithApproxTrim 切换为 MAXLEN ~，裁剪代价更低但长度可能略超。
//
// 频道广播是即发即弃的：无订阅者时消息丢失，返回 0，不视为错误。
//
// 载荷编码失败返回 ErrEncode，不会写入任何数据。
package xstream
