package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/chzyer/readline"
	"github.com/sourcegraph/conc"
	"github.com/spf13/afero"
	"go.uber.org/multierr"

	"github.com/dbkit/bufferpool/internal"
	"github.com/dbkit/bufferpool/internal/buffer"
	"github.com/dbkit/bufferpool/internal/diskfile"
)

// runREPL drives an interactive console over a live Manager:
//
//	open <name>                 open (or create) a data file
//	alloc <name>                allocate a page, print its number
//	read <name> <pageNo>        pin a page, print its page number
//	unpin <name> <pageNo> <0|1> release a pin, 1 marks it dirty
//	flush <name> [<name> ...]   flush one or more files, errors aggregated
//	dispose <name> <pageNo>     drop a page from the pool and the file
//	stress <name> <n>           fan out n concurrent allocations (conc)
//	stats                       print per-frame residency
//	quit
func runREPL(fs afero.Fs, cfg *internal.BufferPoolConfig, m *buffer.Manager) error {
	rl, err := readline.New("bufpool> ")
	if err != nil {
		return fmt.Errorf("repl: start readline: %w", err)
	}
	defer func() { _ = rl.Close() }()

	cm := buffer.NewConcurrent(m)
	files := make(map[string]*diskfile.File)

	openFile := func(name string) (*diskfile.File, error) {
		if f, ok := files[name]; ok {
			return f, nil
		}
		f, err := diskfile.Create(fs, filepath.Join(cfg.Storage.WorkDir, name), cfg.Pool.PageSize)
		if err != nil {
			return nil, err
		}
		files[name] = f
		return f, nil
	}

	for {
		line, err := rl.Readline()
		if err == io.EOF || err == readline.ErrInterrupt {
			return nil
		}
		if err != nil {
			return err
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "quit", "exit":
			return nil

		case "open":
			if len(args) != 1 {
				fmt.Println("usage: open <name>")
				continue
			}
			if _, err := openFile(args[0]); err != nil {
				fmt.Println("error:", err)
			}

		case "alloc":
			if len(args) != 1 {
				fmt.Println("usage: alloc <name>")
				continue
			}
			f, err := openFile(args[0])
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			pageNo, _, err := cm.AllocPage(f)
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			fmt.Println("allocated page", pageNo)

		case "read":
			if len(args) != 2 {
				fmt.Println("usage: read <name> <pageNo>")
				continue
			}
			f, err := openFile(args[0])
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			pageNo, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			if _, err := cm.ReadPage(f, pageNo); err != nil {
				fmt.Println("error:", err)
				continue
			}
			fmt.Println("pinned page", pageNo)

		case "unpin":
			if len(args) != 3 {
				fmt.Println("usage: unpin <name> <pageNo> <0|1>")
				continue
			}
			f, err := openFile(args[0])
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			pageNo, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			if err := cm.UnpinPage(f, pageNo, args[2] == "1"); err != nil {
				fmt.Println("error:", err)
				continue
			}
			fmt.Println("unpinned page", pageNo)

		case "flush":
			if len(args) == 0 {
				fmt.Println("usage: flush <name> [<name> ...]")
				continue
			}
			var aggregate error
			for _, name := range args {
				f, err := openFile(name)
				if err != nil {
					aggregate = multierr.Append(aggregate, err)
					continue
				}
				if err := cm.FlushFile(f); err != nil {
					aggregate = multierr.Append(aggregate, fmt.Errorf("%s: %w", name, err))
				}
			}
			if aggregate != nil {
				fmt.Println("error:", aggregate)
				continue
			}
			fmt.Println("flushed", strings.Join(args, ", "))

		case "dispose":
			if len(args) != 2 {
				fmt.Println("usage: dispose <name> <pageNo>")
				continue
			}
			f, err := openFile(args[0])
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			pageNo, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			if err := cm.DisposePage(f, pageNo); err != nil {
				fmt.Println("error:", err)
				continue
			}
			fmt.Println("disposed page", pageNo)

		case "stress":
			if len(args) != 2 {
				fmt.Println("usage: stress <name> <n>")
				continue
			}
			f, err := openFile(args[0])
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			n, err := strconv.Atoi(args[1])
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			var wg conc.WaitGroup
			var mu sync.Mutex
			var aggregate error
			for i := 0; i < n; i++ {
				wg.Go(func() {
					pageNo, _, err := cm.AllocPage(f)
					if err != nil {
						mu.Lock()
						aggregate = multierr.Append(aggregate, err)
						mu.Unlock()
						return
					}
					if err := cm.UnpinPage(f, pageNo, true); err != nil {
						mu.Lock()
						aggregate = multierr.Append(aggregate, err)
						mu.Unlock()
					}
				})
			}
			wg.Wait()
			if aggregate != nil {
				fmt.Println("error:", aggregate)
				continue
			}
			fmt.Printf("stress: %d concurrent allocations on %s completed\n", n, args[0])

		case "stats":
			fmt.Println(cm.String())
			for _, r := range cm.Describe() {
				if r.Valid {
					fmt.Printf("  frame=%d file=%s page=%d pin=%d dirty=%v ref=%v\n",
						r.FrameNo, r.File, r.PageNo, r.PinCnt, r.Dirty, r.RefBit)
				}
			}

		default:
			fmt.Println("unknown command:", cmd)
		}
	}
}
