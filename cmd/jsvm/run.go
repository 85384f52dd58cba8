package main

import (
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/coreform/jsvm/core/gc"
	"github.com/coreform/jsvm/core/hostapi"
	"github.com/coreform/jsvm/core/object"
	"github.com/coreform/jsvm/core/realm"
	"github.com/coreform/jsvm/core/value"
	"github.com/coreform/jsvm/core/vm"
)

func vmConfig(maxStack, maxCalls, maxLoops int) vm.Config {
	return vm.Config{MaxStackDepth: maxStack, MaxCallDepth: maxCalls, MaxLoopIterations: maxLoops}
}

func newRunCmd() *cobra.Command {
	var (
		serve      bool
		addr       string
		maxCells   uint64
		maxStack   int
		maxCalls   int
		maxLoops   int
		verbose    bool
	)
	cmd := &cobra.Command{
		Use:   "run <fixture.json>",
		Short: "run a JSON CodeBlock fixture in a fresh realm",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := zap.NewNop()
			if verbose {
				l, err := zap.NewDevelopment()
				if err != nil {
					return err
				}
				log = l
			}

			code, err := loadFixture(args[0])
			if err != nil {
				return err
			}

			ctx, err := realm.NewContext(realm.Config{
				GC: gc.Config{MaxCells: maxCells},
				VM: vmConfig(maxStack, maxCalls, maxLoops),
				Hooks: hostapi.Hooks{
					Random: rand.Float64,
					UTCNow: func() int64 { return time.Now().UnixMilli() },
					OnUncaughtException: func(v value.Value) {
						fmt.Println("uncaught exception:", formatValue(v))
					},
					OnUnhandledRejection: func(v value.Value) {
						fmt.Println("unhandled rejection:", formatValue(v))
					},
				},
				Logger: log,
			})
			if err != nil {
				return err
			}

			if serve {
				srv := newDebugServer(ctx)
				go func() {
					fmt.Println("debug server listening on", addr)
					_ = http.ListenAndServe(addr, srv)
				}()
			}

			result, err := ctx.Eval(code)
			if err != nil {
				return fmt.Errorf("script threw: %w", err)
			}
			fmt.Println(formatValue(result))
			return nil
		},
	}
	cmd.Flags().BoolVar(&serve, "serve", false, "start the /metrics and /debug/shapes HTTP server")
	cmd.Flags().StringVar(&addr, "addr", ":8090", "debug server listen address")
	cmd.Flags().Uint64Var(&maxCells, "max-cells", 0, "heap cell ceiling (0 = unbounded)")
	cmd.Flags().IntVar(&maxStack, "max-stack-depth", 0, "VM operand stack depth limit (0 = unbounded)")
	cmd.Flags().IntVar(&maxCalls, "max-call-depth", 0, "VM call depth limit (0 = unbounded)")
	cmd.Flags().IntVar(&maxLoops, "max-loop-iterations", 0, "VM loop iteration limit (0 = unbounded)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable development logging")
	return cmd
}

func formatValue(v value.Value) string {
	switch {
	case v.IsUndefined():
		return "undefined"
	case v.IsNull():
		return "null"
	case v.IsString():
		return v.GoString()
	case v.IsObject():
		o, _ := object.FromValue(v)
		if o.Callable() {
			return "[Function]"
		}
		return "[object " + o.Class() + "]"
	default:
		return v.GoString()
	}
}
