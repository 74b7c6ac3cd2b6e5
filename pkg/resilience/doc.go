// Package resilience 提供容错相关的子包。
//
// 子包列表：
//   - xretry: 重试策略、退避策略与执行器
package resilience
