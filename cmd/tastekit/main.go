// Command tastekit 是观影历史补全与推荐的命令行入口。
//
//	tastekit [-config tastekit.yaml] enrich    -user alice -file history.txt
//	tastekit [-config tastekit.yaml] recommend -user alice -limit 10
//	tastekit [-config tastekit.yaml] seed      -movies tmdb_movies.csv -credits tmdb_credits.csv
//	tastekit [-config tastekit.yaml] quality   -sample 10
//
// 配置按 默认值 -> YAML 文件 -> TASTEKIT_ 前缀环境变量 叠加，例如 TASTEKIT_OMDB__API_KEY。
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rushteam/tastekit/config"
	"github.com/rushteam/tastekit/pkg/logging"
)

type command struct {
	name  string
	usage string
	run   func(ctx context.Context, app *application, args []string) error
}

var commands = []command{
	{"enrich", "补全用户观影历史（每行一个标题）", runEnrich},
	{"recommend", "为用户生成推荐", runRecommend},
	{"seed", "导入 TMDB 目录数据", runSeed},
	{"quality", "检查已存记录的元数据覆盖情况", runQuality},
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		logging.L().Error().Err(err).Msg("tastekit failed")
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("tastekit", flag.ContinueOnError)
	configPath := fs.String("config", os.Getenv("TASTEKIT_CONFIG"), "YAML 配置文件路径")
	fs.Usage = func() { usage(fs) }
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		usage(fs)
		return errors.New("missing command")
	}

	name := fs.Arg(0)
	var cmd *command
	for i := range commands {
		if commands[i].name == name {
			cmd = &commands[i]
			break
		}
	}
	if cmd == nil {
		usage(fs)
		return fmt.Errorf("unknown command %q", name)
	}

	cfg, err := config.LoadApp(*configPath)
	if err != nil {
		return err
	}
	logging.Init(cfg.Log.Logging())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApplication(ctx, cfg, stdout)
	if err != nil {
		return err
	}
	defer app.Close()

	return cmd.run(ctx, app, fs.Args()[1:])
}

func usage(fs *flag.FlagSet) {
	out := fs.Output()
	fmt.Fprintln(out, "usage: tastekit [-config file] <command> [flags]")
	fmt.Fprintln(out, "\ncommands:")
	for _, c := range commands {
		fmt.Fprintf(out, "  %-10s %s\n", c.name, c.usage)
	}
	fmt.Fprintln(out, "\nglobal flags:")
	fs.PrintDefaults()
}
