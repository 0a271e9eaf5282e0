package app

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Sink receives encoded pages during export.
type Sink interface {
	WritePage(name string, png []byte) error
}

// DirSink writes each page as a file inside Dir.
type DirSink struct {
	Dir string
}

func (d DirSink) WritePage(name string, png []byte) error {
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	path := filepath.Join(d.Dir, name)
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return fmt.Errorf("写入 %s 失败: %w", path, err)
	}
	return nil
}

// ExportCurrent writes the selected page under its export file name.
func (c *Controller) ExportCurrent(sink Sink) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var buf bytes.Buffer
	if err := c.canvas.WritePNG(&buf); err != nil {
		return err
	}
	return sink.WritePage(PageFilename(c.pageIndex), buf.Bytes())
}

// ExportAll 逐页切换、重绘并截取，画布同一时间只服务一页。
// 结束后恢复原来选中的页；ctx 只在两页之间检查。
func (c *Controller) ExportAll(ctx context.Context, sink Sink) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.pageIndex
	defer func() {
		c.pageIndex = prev
		if err := c.refresh(); err != nil {
			c.logger.Error("restore page failed", "page", prev, "error", err)
		}
	}()

	total := c.totalPages
	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		c.pageIndex = i
		if err := c.refresh(); err != nil {
			return i, err
		}
		var buf bytes.Buffer
		if err := c.canvas.WritePNG(&buf); err != nil {
			return i, err
		}
		name := PageFilename(i)
		if err := sink.WritePage(name, buf.Bytes()); err != nil {
			return i, err
		}
		c.logger.Debug("page exported", "file", name, "page", i+1, "total", total)
	}
	return total, nil
}
