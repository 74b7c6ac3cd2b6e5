// Package xconf 提供基于 koanf 的配置加载。
//
// 支持 YAML（.yaml/.yml）和 JSON（.json）两种格式，按扩展名识别；
// 从字节创建时需显式指定格式。
//
//	cfg, err := xconf.New("coord.yaml")
//	if err != nil {
//	    return err
//	}
//	var redisCfg RedisConfig
//	if err := cfg.Unmarshal("coord.redis", &redisCfg); err != nil {
//	    return err
//	}
//
// Reload 重新读取文件并原子替换，解析失败时保留旧配置。
// Client() 返回的 koanf 实例在 Reload 后仍可使用，但指向旧快照。
package xconf
