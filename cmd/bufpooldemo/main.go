// Command bufpooldemo exercises the buffer pool manager against real
// on-disk files, the way the original allocate/read/unpin walk in
// badgerdb's main.cpp does: allocate a run of pages, write a record
// into each, read them back, then stress the pool across several
// files at once. An optional interactive console can be attached
// afterward with -repl.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/dbkit/bufferpool/internal"
	"github.com/dbkit/bufferpool/internal/buffer"
	"github.com/dbkit/bufferpool/internal/diskfile"
)

func main() {
	var cfgPath string
	var repl bool
	flag.StringVar(&cfgPath, "config", "bufpool.yaml", "Path to bufpooldemo yaml config")
	flag.BoolVar(&repl, "repl", false, "Drop into an interactive console after the demo walk")
	flag.Parse()

	cfg, err := internal.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if err := os.MkdirAll(cfg.Storage.WorkDir, 0o755); err != nil {
		log.Fatalf("create workdir: %v", err)
	}

	fs := afero.NewOsFs()
	m := buffer.NewManager(cfg.Pool.NumBufs, cfg.Pool.PageSize)

	if err := runDemo(fs, cfg, m); err != nil {
		log.Fatalf("demo: %v", err)
	}
	fmt.Println("demo walk passed")

	if repl {
		if err := runREPL(fs, cfg, m); err != nil {
			log.Fatalf("repl: %v", err)
		}
	}
}

// runDemo reproduces the shape of the original test1/test2/test3/
// test4 walk: allocate-then-read within one file, cross-file
// interleave, an invalid read, and a double unpin. It does not
// exercise pool exhaustion.
func runDemo(fs afero.Fs, cfg *internal.BufferPoolConfig, m *buffer.Manager) error {
	numBufs := cfg.Pool.NumBufs
	pageSize := cfg.Pool.PageSize
	dir := cfg.Storage.WorkDir

	file1, err := openDemoFile(fs, dir, "test.1", pageSize)
	if err != nil {
		return err
	}
	file2, err := openDemoFile(fs, dir, "test.2", pageSize)
	if err != nil {
		return err
	}
	file3, err := openDemoFile(fs, dir, "test.3", pageSize)
	if err != nil {
		return err
	}
	file4, err := openDemoFile(fs, dir, "test.4", pageSize)
	if err != nil {
		return err
	}

	pageNos := make([]int64, numBufs)
	for i := 0; i < numBufs; i++ {
		pageNo, p, err := m.AllocPage(file1)
		if err != nil {
			return fmt.Errorf("alloc test.1 page %d: %w", i, err)
		}
		if _, err := p.InsertRecord([]byte(fmt.Sprintf("test.1 Page %d %d", pageNo, pageNo))); err != nil {
			return err
		}
		if err := m.UnpinPage(file1, pageNo, true); err != nil {
			return err
		}
		pageNos[i] = pageNo
	}
	for _, pageNo := range pageNos {
		p, err := m.ReadPage(file1, pageNo)
		if err != nil {
			return fmt.Errorf("read test.1 page %d: %w", pageNo, err)
		}
		if _, err := p.GetRecord(0); err != nil {
			return err
		}
		if err := m.UnpinPage(file1, pageNo, false); err != nil {
			return err
		}
	}

	for i := 0; i < numBufs/3; i++ {
		pageNo2, p2, err := m.AllocPage(file2)
		if err != nil {
			return err
		}
		if _, err := p2.InsertRecord([]byte(fmt.Sprintf("test.2 Page %d", pageNo2))); err != nil {
			return err
		}
		pageNo3, p3, err := m.AllocPage(file3)
		if err != nil {
			return err
		}
		if _, err := p3.InsertRecord([]byte(fmt.Sprintf("test.3 Page %d", pageNo3))); err != nil {
			return err
		}
		if err := m.UnpinPage(file2, pageNo2, true); err != nil {
			return err
		}
		if err := m.UnpinPage(file3, pageNo3, true); err != nil {
			return err
		}
	}

	if _, err := m.ReadPage(file4, 1); err == nil {
		return fmt.Errorf("expected InvalidPage reading an empty file4")
	}

	pageNo4, _, err := m.AllocPage(file4)
	if err != nil {
		return err
	}
	if err := m.UnpinPage(file4, pageNo4, true); err != nil {
		return err
	}
	if err := m.UnpinPage(file4, pageNo4, false); err == nil {
		return fmt.Errorf("expected PageNotPinned on double unpin")
	}

	return nil
}

func openDemoFile(fs afero.Fs, dir, name string, pageSize int) (*diskfile.File, error) {
	return diskfile.Create(fs, filepath.Join(dir, name), pageSize)
}
