// Package mq 提供消息发布相关的子包。
//
// 子包列表：
//   - xstream: 有界事件流追加与频道广播
package mq
