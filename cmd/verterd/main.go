// Command verterd is the CLI front end for the verter page store: a REPL,
// a TCP line server, an HTTP server, and one-shot handle operations. It
// replaces the teacher project's flag-parsed main.go with a cobra command
// tree, the way operator-registry's cmd/opm does.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"verter/internal/engine"
	"verter/internal/httpserve"
	"verter/internal/netserve"
	"verter/internal/store"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type rootFlags struct {
	dbPath   string
	magic    string
	pageSize int
	debug    bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "verterd",
		Short: "verter page store",
		Long:  "CLI for opening and driving a verter single-file blob store.",
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if flags.debug {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
	}

	cmd.PersistentFlags().StringVar(&flags.dbPath, "db", "verter.db", "path to the store file")
	cmd.PersistentFlags().StringVar(&flags.magic, "magic", "", "magic bytes (defaults to VERTER_MAGIC env or VERTER__)")
	cmd.PersistentFlags().IntVar(&flags.pageSize, "page-size", 0, "payload bytes per page (defaults to VERTER_PAGE_SIZE env or 120)")
	cmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "enable debug logging")

	cmd.AddCommand(
		newAllocCmd(flags),
		newReadCmd(flags),
		newWriteCmd(flags),
		newDeleteCmd(flags),
		newRootGetCmd(flags),
		newRootSetCmd(flags),
		newStatCmd(flags),
		newReplCmd(flags),
		newServeCmd(flags),
		newHTTPCmd(flags),
	)
	return cmd
}

// resolveConfig applies the flag > env > default precedence described in
// SPEC_FULL.md section B.
func (f *rootFlags) resolveConfig(cmd *cobra.Command) store.Config {
	cfg := store.DefaultConfig()

	magic := f.magic
	if magic == "" {
		if env := os.Getenv("VERTER_MAGIC"); env != "" {
			magic = env
		}
	}
	if magic != "" {
		cfg.MagicBytes = []byte(magic)
	}

	if f.pageSize != 0 {
		cfg.PageSize = f.pageSize
	} else if env := os.Getenv("VERTER_PAGE_SIZE"); env != "" {
		var n int
		if _, err := fmt.Sscanf(env, "%d", &n); err == nil && n > 0 {
			cfg.PageSize = n
		}
	}
	return cfg
}

func (f *rootFlags) open(cmd *cobra.Command) (*engine.Engine, error) {
	cfg := f.resolveConfig(cmd)
	file, err := store.Open(f.dbPath, cfg)
	if err != nil {
		return nil, err
	}
	return engine.New(file), nil
}

func newAllocCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "alloc",
		Short: "allocate a fresh empty blob and print its handle",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := flags.open(cmd)
			if err != nil {
				return err
			}
			defer eng.Close()
			h, err := eng.Alloc()
			if err != nil {
				return err
			}
			fmt.Println(h)
			return nil
		},
	}
}

func newReadCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "read <handle>",
		Short: "read the blob at handle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := flags.open(cmd)
			if err != nil {
				return err
			}
			defer eng.Close()
			h, err := parseHandle(args[0])
			if err != nil {
				return err
			}
			data, err := eng.Read(h)
			if err != nil {
				return err
			}
			fmt.Print(string(data))
			return nil
		},
	}
}

func newWriteCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "write <handle> <data>",
		Short: "overwrite the blob at handle",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := flags.open(cmd)
			if err != nil {
				return err
			}
			defer eng.Close()
			h, err := parseHandle(args[0])
			if err != nil {
				return err
			}
			return eng.Write(h, []byte(args[1]))
		},
	}
}

func newDeleteCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <handle>",
		Short: "free the chain rooted at handle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := flags.open(cmd)
			if err != nil {
				return err
			}
			defer eng.Close()
			h, err := parseHandle(args[0])
			if err != nil {
				return err
			}
			return eng.Delete(h)
		},
	}
}

func newRootGetCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "root-get",
		Short: "read the file's distinguished root blob",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := flags.open(cmd)
			if err != nil {
				return err
			}
			defer eng.Close()
			data, err := eng.ReadRoot()
			if err != nil {
				return err
			}
			fmt.Print(string(data))
			return nil
		},
	}
}

func newRootSetCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "root-set <data>",
		Short: "overwrite the file's distinguished root blob",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := flags.open(cmd)
			if err != nil {
				return err
			}
			defer eng.Close()
			return eng.WriteRoot([]byte(args[0]))
		},
	}
}

func newStatCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stat <handle>",
		Short: "print the logical length of the blob at handle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := flags.open(cmd)
			if err != nil {
				return err
			}
			defer eng.Close()
			h, err := parseHandle(args[0])
			if err != nil {
				return err
			}
			st, err := eng.Stat(h)
			if err != nil {
				return err
			}
			fmt.Println(st.String())
			return nil
		},
	}
}

func newServeCmd(flags *rootFlags) *cobra.Command {
	var addr, token string
	var readOnly bool
	c := &cobra.Command{
		Use:   "serve",
		Short: "start the TCP line server",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := flags.open(cmd)
			if err != nil {
				return err
			}
			defer eng.Close()
			return netserve.Serve(addr, eng, netserve.Options{RequireToken: token, ReadOnly: readOnly})
		},
	}
	c.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	c.Flags().StringVar(&token, "auth", "", "require this token for writes")
	c.Flags().BoolVar(&readOnly, "readonly", false, "block writes")
	return c
}

func newHTTPCmd(flags *rootFlags) *cobra.Command {
	var addr, token string
	var readOnly bool
	c := &cobra.Command{
		Use:   "http",
		Short: "start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := flags.open(cmd)
			if err != nil {
				return err
			}
			defer eng.Close()
			return httpserve.Start(addr, eng, httpserve.Options{RequireToken: token, ReadOnly: readOnly})
		},
	}
	c.Flags().StringVar(&addr, "addr", ":8090", "listen address")
	c.Flags().StringVar(&token, "auth", "", "require this bearer token for writes")
	c.Flags().BoolVar(&readOnly, "readonly", false, "block writes")
	return c
}

func parseHandle(s string) (uint64, error) {
	var h uint64
	if _, err := fmt.Sscanf(s, "%d", &h); err != nil {
		return 0, fmt.Errorf("invalid handle %q: %w", s, err)
	}
	return h, nil
}
