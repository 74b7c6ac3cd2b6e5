package main

import (
	"context"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/omeyang/xcoord/pkg/distributed/xidem"
	"github.com/omeyang/xcoord/pkg/distributed/xlease"
	"github.com/omeyang/xcoord/pkg/mq/xstream"
)

// 创建所有子命令。
func createCommands() []*cli.Command {
	return []*cli.Command{
		createPingCommand(),
		createLockCommand(),
		createUnlockCommand(),
		createClaimCommand(),
		createXAddCommand(),
		createPublishCommand(),
	}
}

func createPingCommand() *cli.Command {
	return &cli.Command{
		Name:  "ping",
		Usage: "检查 Redis 连通性",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withRuntime(ctx, cmd, func(ctx context.Context, rt *runtime) error {
				if err := rt.do(ctx, rt.redis.Health); err != nil {
					return err
				}
				fmt.Fprintln(cmd.Root().Writer, "PONG")
				return nil
			})
		},
	}
}

func createLockCommand() *cli.Command {
	return &cli.Command{
		Name:      "lock",
		Usage:     "获取租约，未获得时退出码为 1",
		ArgsUsage: "<key>",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:    "lease",
				Aliases: []string{"l"},
				Usage:   "租约时长，默认取配置 lock.default_lease",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			key, err := requireArgs(cmd, 1)
			if err != nil {
				return err
			}
			return withRuntime(ctx, cmd, func(ctx context.Context, rt *runtime) error {
				locker, err := rt.locker()
				if err != nil {
					return err
				}
				lease := rt.cfg.Lock.DefaultLease
				if cmd.IsSet("lease") {
					lease = cmd.Duration("lease")
				}

				var ok bool
				err = rt.do(ctx, func(ctx context.Context) error {
					granted, err := locker.Acquire(ctx, key[0], lease)
					ok = granted
					return usageIfInvalid(err)
				})
				if err != nil {
					return err
				}
				return report(cmd, ok, fmt.Sprintf("granted %s lease=%s", key[0], lease), "not granted "+key[0])
			})
		},
	}
}

func createUnlockCommand() *cli.Command {
	return &cli.Command{
		Name:      "unlock",
		Usage:     "删除租约（不校验持有者）",
		ArgsUsage: "<key>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			key, err := requireArgs(cmd, 1)
			if err != nil {
				return err
			}
			return withRuntime(ctx, cmd, func(ctx context.Context, rt *runtime) error {
				locker, err := rt.locker()
				if err != nil {
					return err
				}
				if err := rt.do(ctx, func(ctx context.Context) error {
					return usageIfInvalid(locker.Release(ctx, key[0]))
				}); err != nil {
					return err
				}
				fmt.Fprintln(cmd.Root().Writer, "released", key[0])
				return nil
			})
		},
	}
}

func createClaimCommand() *cli.Command {
	return &cli.Command{
		Name:      "claim",
		Usage:     "在窗口内认领 key，未认领到时退出码为 1",
		ArgsUsage: "<key>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "token",
				Usage: "写入的标识，默认随机 UUID",
			},
			&cli.DurationFlag{
				Name:  "ttl",
				Usage: "认领窗口，默认取配置 claim.ttl",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			key, err := requireArgs(cmd, 1)
			if err != nil {
				return err
			}
			return withRuntime(ctx, cmd, func(ctx context.Context, rt *runtime) error {
				guard, err := rt.guard()
				if err != nil {
					return err
				}
				token := cmd.String("token")
				if token == "" {
					token = uuid.NewString()
				}
				ttl := rt.cfg.Claim.TTL
				if cmd.IsSet("ttl") {
					ttl = cmd.Duration("ttl")
				}

				var ok bool
				err = rt.do(ctx, func(ctx context.Context) error {
					claimed, err := guard.TryClaim(ctx, key[0], token, ttl)
					ok = claimed
					return usageIfInvalid(err)
				})
				if err != nil {
					return err
				}
				return report(cmd, ok,
					fmt.Sprintf("claimed %s token=%s ttl=%s", key[0], token, ttl),
					"not claimed "+key[0])
			})
		},
	}
}

func createXAddCommand() *cli.Command {
	return &cli.Command{
		Name:      "xadd",
		Usage:     "追加一条 JSON 记录到有界流，输出记录 ID",
		ArgsUsage: "<stream> <json>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args, err := requireArgs(cmd, 2)
			if err != nil {
				return err
			}
			return withRuntime(ctx, cmd, func(ctx context.Context, rt *runtime) error {
				pub, err := rt.publisher()
				if err != nil {
					return err
				}
				var id string
				err = rt.do(ctx, func(ctx context.Context) error {
					recordID, err := pub.PublishToStream(ctx, args[0], json.RawMessage(args[1]))
					id = recordID
					return usageIfInvalid(err)
				})
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.Root().Writer, id)
				return nil
			})
		},
	}
}

func createPublishCommand() *cli.Command {
	return &cli.Command{
		Name:      "publish",
		Usage:     "向频道广播一条 JSON 消息，输出收到消息的订阅者数量",
		ArgsUsage: "<channel> <json>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args, err := requireArgs(cmd, 2)
			if err != nil {
				return err
			}
			return withRuntime(ctx, cmd, func(ctx context.Context, rt *runtime) error {
				pub, err := rt.publisher()
				if err != nil {
					return err
				}
				var n int64
				err = rt.do(ctx, func(ctx context.Context) error {
					receivers, err := pub.PublishToChannel(ctx, args[0], json.RawMessage(args[1]))
					n = receivers
					return usageIfInvalid(err)
				})
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.Root().Writer, n)
				return nil
			})
		},
	}
}

// requireArgs 校验位置参数个数并返回前 n 个。
func requireArgs(cmd *cli.Command, n int) ([]string, error) {
	if cmd.Args().Len() != n {
		return nil, newUsageError("%s: expected %d argument(s) %s, got %d",
			cmd.Name, n, cmd.ArgsUsage, cmd.Args().Len())
	}
	return cmd.Args().Slice(), nil
}

// usageIfInvalid 把输入校验类错误转为参数错误，其余原样返回。
func usageIfInvalid(err error) error {
	if err == nil {
		return nil
	}
	if isInvalidInput(err) {
		return &usageError{msg: err.Error()}
	}
	return err
}

func report(cmd *cli.Command, ok bool, granted, denied string) error {
	if ok {
		fmt.Fprintln(cmd.Root().Writer, granted)
		return nil
	}
	fmt.Fprintln(cmd.Root().Writer, denied)
	return errNotGranted
}

func isInvalidInput(err error) bool {
	for _, target := range []error{
		xlease.ErrEmptyKey, xlease.ErrInvalidLease,
		xidem.ErrEmptyKey, xidem.ErrInvalidTTL,
		xstream.ErrEmptyKey, xstream.ErrEncode,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
