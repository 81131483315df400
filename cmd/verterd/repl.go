package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"verter/internal/cmdlang"
	"verter/internal/engine"
)

func newReplCmd(flags *rootFlags) *cobra.Command {
	var demo bool
	c := &cobra.Command{
		Use:   "repl",
		Short: "interactive command loop over the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := flags.open(cmd)
			if err != nil {
				return err
			}
			defer eng.Close()

			if demo {
				return runDemo(cmd, eng)
			}
			return runRepl(cmd, eng)
		},
	}
	c.Flags().BoolVar(&demo, "demo", false, "run the write/read/delete walkthrough and exit")
	return c
}

// runDemo walks through the basic operations: write the root blob,
// allocate and write a second blob, read both back through the same open
// engine, then delete the second blob and confirm it no longer reads. The
// file is not closed and reopened between the writes and the reads.
func runDemo(cmd *cobra.Command, eng *engine.Engine) error {
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "writing root blob...")
	if err := eng.WriteRoot([]byte("hello, root!")); err != nil {
		return err
	}

	fmt.Fprintln(out, "allocating a second blob...")
	handle, err := eng.Alloc()
	if err != nil {
		return err
	}
	if err := eng.Write(handle, []byte("hello, blob!")); err != nil {
		return err
	}
	fmt.Fprintf(out, "wrote blob at handle %d\n", handle)

	root, err := eng.ReadRoot()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "root: %s\n", root)

	data, err := eng.Read(handle)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "blob %d: %s\n", handle, data)

	fmt.Fprintf(out, "deleting blob %d...\n", handle)
	if err := eng.Delete(handle); err != nil {
		return err
	}

	if _, err := eng.Read(handle); err == nil {
		return fmt.Errorf("demo: expected handle %d to be deleted", handle)
	}
	fmt.Fprintln(out, "demo complete")
	return nil
}

func runRepl(cmd *cobra.Command, eng *engine.Engine) error {
	out := cmd.OutOrStdout()
	in := bufio.NewScanner(cmd.InOrStdin())

	fmt.Fprintln(out, "verter repl. Type HELP for commands, EXIT to quit.")
	for {
		fmt.Fprint(out, "> ")
		if !in.Scan() {
			return nil
		}
		line := in.Text()
		if line == "" {
			continue
		}
		cmdVal, err := cmdlang.Parse(line)
		if err != nil {
			fmt.Fprintln(out, "error:", err)
			continue
		}
		if cmdVal.Name == "EXIT" || cmdVal.Name == "QUIT" {
			return nil
		}
		if cmdVal.Name == "HELP" {
			fmt.Fprintln(out, "ALLOC | READ <h> | WRITE <h> <data> | DELETE <h>")
			fmt.Fprintln(out, "READROOT | WRITEROOT <data> | PUT <n> <d> | GET <n> | RM <n> | LS | STAT <h>")
			continue
		}
		if err := dispatchRepl(out, eng, cmdVal); err != nil {
			fmt.Fprintln(out, "error:", err)
		}
	}
}

func dispatchRepl(out interface{ Write([]byte) (int, error) }, eng *engine.Engine, cmd cmdlang.Command) error {
	switch cmd.Name {
	case "ALLOC":
		h, err := eng.Alloc()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, h)
	case "READ":
		h, err := strconv.ParseUint(cmd.Args[0], 10, 64)
		if err != nil {
			return err
		}
		data, err := eng.Read(h)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
	case "WRITE":
		h, err := strconv.ParseUint(cmd.Args[0], 10, 64)
		if err != nil {
			return err
		}
		if err := eng.Write(h, []byte(cmd.Args[1])); err != nil {
			return err
		}
		fmt.Fprintln(out, "OK")
	case "DELETE":
		h, err := strconv.ParseUint(cmd.Args[0], 10, 64)
		if err != nil {
			return err
		}
		if err := eng.Delete(h); err != nil {
			return err
		}
		fmt.Fprintln(out, "OK")
	case "READROOT":
		data, err := eng.ReadRoot()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
	case "WRITEROOT":
		if err := eng.WriteRoot([]byte(cmd.Args[0])); err != nil {
			return err
		}
		fmt.Fprintln(out, "OK")
	case "PUT":
		if _, err := eng.Put(cmd.Args[0], []byte(cmd.Args[1])); err != nil {
			return err
		}
		fmt.Fprintln(out, "OK")
	case "GET":
		data, err := eng.Get(cmd.Args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
	case "RM":
		if err := eng.Remove(cmd.Args[0]); err != nil {
			return err
		}
		fmt.Fprintln(out, "OK")
	case "LS":
		names, err := eng.List()
		if err != nil {
			return err
		}
		for _, n := range names {
			fmt.Fprintln(out, n)
		}
	case "STAT":
		h, err := strconv.ParseUint(cmd.Args[0], 10, 64)
		if err != nil {
			return err
		}
		st, err := eng.Stat(h)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, st.String())
	default:
		fmt.Fprintln(os.Stderr, "unknown command:", cmd.Name)
	}
	return nil
}
