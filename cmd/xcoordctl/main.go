// xcoordctl 是 xcoord 协调原语的运维命令行工具。
//
// 用法:
//
//	xcoordctl [全局选项] <命令> [命令参数]
//
// 全局选项:
//
//	-c, --config     配置文件路径（YAML/JSON，读取 coord 段）
//	-a, --addr       Redis 地址 (默认: 127.0.0.1:6379)
//	    --password   Redis 密码
//	    --db         Redis DB
//	-t, --timeout    单条命令超时 (默认: 5s)
//	-r, --retries    存储错误时的额外重试次数 (默认: 0)
//	    --log-level  日志级别 (debug/info/warn/error)
//
// 命令:
//
//	ping                        检查 Redis 连通性
//	lock <key> [--lease]        获取租约
//	unlock <key>                删除租约（不校验持有者）
//	claim <key> [--token] [--ttl]  窗口内认领
//	xadd <stream> <json>        追加到有界流
//	publish <channel> <json>    频道广播
//
// 退出码:
//
//	0: 成功
//	1: 执行失败，或租约/认领未获得
//	2: 参数错误
//
// 示例:
//
//	xcoordctl lock order:42 --lease 5s
//	xcoordctl -c coord.yaml claim report:daily --ttl 50s
//	xcoordctl xadd orders '{"id":42,"status":"paid"}'
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
)

const (
	defaultAddr    = "127.0.0.1:6379"
	defaultTimeout = 5 * time.Second
)

// 版本信息，可通过 -ldflags 注入。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// createApp 创建 CLI 应用。
func createApp() *cli.Command {
	return &cli.Command{
		Name:    "xcoordctl",
		Usage:   "Redis 协调原语运维工具",
		Version: fmt.Sprintf("%s (commit: %s)", Version, GitCommit),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "配置文件路径",
			},
			&cli.StringFlag{
				Name:    "addr",
				Aliases: []string{"a"},
				Usage:   "Redis 地址",
				Value:   defaultAddr,
			},
			&cli.StringFlag{
				Name:  "password",
				Usage: "Redis 密码",
			},
			&cli.IntFlag{
				Name:  "db",
				Usage: "Redis DB",
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Aliases: []string{"t"},
				Usage:   "单条命令超时",
				Value:   defaultTimeout,
			},
			&cli.IntFlag{
				Name:    "retries",
				Aliases: []string{"r"},
				Usage:   "存储错误时的额外重试次数",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "日志级别 (debug/info/warn/error)",
			},
		},
		Commands: createCommands(),
		// 退出码统一由 run 映射
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	app := createApp()
	app.Writer = stdout
	app.ErrWriter = stderr

	err := app.Run(ctx, args)
	if err == nil {
		return 0
	}

	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}
	var usageErr *usageError
	if errors.As(err, &usageErr) {
		fmt.Fprintf(stderr, "参数错误: %v\n", usageErr)
		return 2
	}
	if isCLIUsageError(err) {
		fmt.Fprintln(stderr, err)
		return 2
	}
	fmt.Fprintf(stderr, "错误: %v\n", err)
	return 1
}
