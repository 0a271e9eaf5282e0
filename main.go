package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/ByLCY/mdpages/app"
	"github.com/ByLCY/mdpages/internal/config"
	"github.com/ByLCY/mdpages/layout"
	"github.com/ByLCY/mdpages/renderer"
	canvasrenderer "github.com/ByLCY/mdpages/renderer/canvas"
	"github.com/ByLCY/mdpages/server"
)

// Exit codes: 0=success, 1=general, 2=usage.
const (
	exitGeneral = 1
	exitUsage   = 2
)

var errUsage = errors.New("usage error")

type options struct {
	input    string
	output   string
	ratio    string
	fontSize int
	page     int
	font     string
	config   string
	debug    string
	serve    string
	verbose  bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, errUsage) {
			os.Exit(exitUsage)
		}
		os.Exit(exitGeneral)
	}
}

// run 串联配置、Markdown 转换、排版与导出。
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("mdpages", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var opts options
	fs.StringVarP(&opts.input, "in", "i", "", "Markdown 文件路径（- 表示标准输入）")
	fs.StringVarP(&opts.output, "out", "o", "", "PNG 输出目录")
	fs.StringVarP(&opts.ratio, "ratio", "r", layout.DefaultAspectRatio, "图片比例：2:3、3:4 或 1:1")
	fs.IntVarP(&opts.fontSize, "font-size", "s", layout.DefaultFontSize, "字体大小（30-100 像素）")
	fs.IntVarP(&opts.page, "page", "p", 0, "只导出第 N 页（从 1 开始，0 表示全部）")
	fs.StringVar(&opts.font, "font", "", "字体：builtin:goregular、builtin:gomono 或 TTF 路径")
	fs.StringVarP(&opts.config, "config", "c", "", "YAML 配置文件")
	fs.StringVar(&opts.debug, "debug", "", "布局调试 JSON 输出路径")
	fs.StringVar(&opts.serve, "serve", "", "以预览服务器模式监听该地址，例如 :8080")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "输出调试日志")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	_, _ = maxprocs.Set(maxprocs.Logger(func(format string, a ...interface{}) {
		logger.Debug(fmt.Sprintf(format, a...))
	}))

	cfg, err := loadConfig(fs, opts)
	if err != nil {
		return err
	}

	surface, err := canvasrenderer.NewSurface(canvasrenderer.Options{FontSrc: cfg.Font.Src})
	if err != nil {
		return fmt.Errorf("加载字体失败: %w", err)
	}
	ctrl, err := app.New(app.Options{
		Canvas: surface,
		Renderer: renderer.New(renderer.Options{
			Background: cfg.Background(),
			Foreground: cfg.Foreground(),
			Logger:     logger,
		}),
		AspectRatio: cfg.Page.AspectRatio,
		FontSize:    cfg.Page.FontSize,
		Vars:        cfg.Vars,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	if opts.input != "" {
		source, err := readInput(opts.input, stdin)
		if err != nil {
			return err
		}
		if err := ctrl.SetMarkdown(source); err != nil {
			return fmt.Errorf("转换 Markdown 失败: %w", err)
		}
	}

	if opts.serve != "" {
		return server.New(ctrl, logger).ListenAndServe(ctx, opts.serve)
	}
	if opts.input == "" {
		return fmt.Errorf("%w: 需要 --in 或 --serve", errUsage)
	}

	if opts.debug != "" {
		if err := writeDebug(ctrl, opts.debug); err != nil {
			return err
		}
	}
	return export(ctx, ctrl, cfg.Output.Dir, opts.page, stdout)
}

// loadConfig 读取配置文件，并让显式传入的参数覆盖配置。
func loadConfig(fs *flag.FlagSet, opts options) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if opts.config != "" {
		loaded, err := config.Load(opts.config)
		if err != nil {
			if errors.Is(err, config.ErrConfigNotFound) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %v", errUsage, err)
		}
		cfg = loaded
	}
	if fs.Changed("ratio") || opts.config == "" {
		cfg.Page.AspectRatio = opts.ratio
	}
	if fs.Changed("font-size") || opts.config == "" {
		cfg.Page.FontSize = opts.fontSize
	}
	if opts.font != "" {
		cfg.Font.Src = opts.font
	}
	if opts.output != "" {
		cfg.Output.Dir = opts.output
	}
	if opts.page < 0 {
		return nil, fmt.Errorf("%w: --page 不能为负数", errUsage)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", errUsage, err)
	}
	return cfg, nil
}

func readInput(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("读取标准输入失败: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("无法打开 Markdown 文件 %s: %w", path, err)
	}
	return string(data), nil
}

func writeDebug(ctrl *app.Controller, debugPath string) error {
	res, err := ctrl.Layout()
	if err != nil {
		return fmt.Errorf("布局计算失败: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(res, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}

// export 导出全部页面，或在 page > 0 时只导出该页。
func export(ctx context.Context, ctrl *app.Controller, dir string, page int, stdout io.Writer) error {
	sink := app.DirSink{Dir: dir}
	if page == 0 {
		n, err := ctrl.ExportAll(ctx, sink)
		if err != nil {
			return fmt.Errorf("导出第 %d 页失败: %w", n+1, err)
		}
		fmt.Fprintf(stdout, "已生成 %d 页图片：%s\n", n, dir)
		return nil
	}

	if total := ctrl.TotalPages(); page > total {
		return fmt.Errorf("%w: 第 %d 页不存在（共 %d 页）", errUsage, page, total)
	}
	if err := ctrl.SelectPage(page - 1); err != nil {
		return err
	}
	if err := ctrl.ExportCurrent(sink); err != nil {
		return fmt.Errorf("导出第 %d 页失败: %w", page, err)
	}
	fmt.Fprintf(stdout, "已生成：%s\n", filepath.Join(dir, app.PageFilename(page-1)))
	return nil
}
