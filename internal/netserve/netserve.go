// Package netserve is the TCP line server: one-line commands in, one-line
// (or multi-line) replies out. Adapted from the teacher project's
// internal/server, regrammared for blob-store verbs via internal/cmdlang.
package netserve

import (
	"bufio"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"verter/internal/cmdlang"
	"verter/internal/engine"
)

// Options configures authentication and write access for a listener.
type Options struct {
	RequireToken string
	ReadOnly     bool
}

var writeVerbs = map[string]bool{
	"ALLOC": true, "WRITE": true, "DELETE": true, "WRITEROOT": true,
	"PUT": true, "RM": true,
}

// Serve listens on addr and serves connections until the listener errors.
func Serve(addr string, eng *engine.Engine, opts Options) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	logrus.WithField("addr", addr).Info("netserve: listening")
	for {
		conn, err := ln.Accept()
		if err != nil {
			logrus.WithError(err).Warn("netserve: accept failed")
			return err
		}
		go handleConn(conn, eng, opts)
	}
}

func handleConn(conn net.Conn, eng *engine.Engine, opts Options) {
	defer conn.Close()
	session := uuid.New()
	log := logrus.WithField("session", session)
	log.Info("netserve: connection opened")
	defer log.Info("netserve: connection closed")

	wr := bufio.NewWriter(conn)
	fmt.Fprintln(wr, "verter server ready. Send commands; close socket to exit.")
	wr.Flush()

	authed := opts.RequireToken == ""
	in := bufio.NewScanner(conn)
	for in.Scan() {
		line := strings.TrimSpace(in.Text())
		if line == "" {
			continue
		}
		cmd, err := cmdlang.Parse(line)
		if err != nil {
			fmt.Fprintln(wr, "ERR:", err)
			wr.Flush()
			continue
		}

		if cmd.Name == "AUTH" {
			if opts.RequireToken != "" && cmd.Args[0] == opts.RequireToken {
				authed = true
				fmt.Fprintln(wr, "OK")
			} else if opts.RequireToken == "" {
				fmt.Fprintln(wr, "OK")
			} else {
				fmt.Fprintln(wr, "ERR: unauthorized")
			}
			wr.Flush()
			continue
		}
		if cmd.Name == "EXIT" || cmd.Name == "QUIT" {
			fmt.Fprintln(wr, "Bye")
			wr.Flush()
			return
		}
		if cmd.Name == "HELP" {
			printHelp(wr)
			wr.Flush()
			continue
		}

		if writeVerbs[cmd.Name] {
			if opts.ReadOnly {
				fmt.Fprintln(wr, "ERR: read-only")
				wr.Flush()
				continue
			}
			if !authed {
				fmt.Fprintln(wr, "ERR: unauthorized")
				wr.Flush()
				continue
			}
		}

		dispatch(wr, eng, cmd, log)
		wr.Flush()
	}
}

func dispatch(wr *bufio.Writer, eng *engine.Engine, cmd cmdlang.Command, log *logrus.Entry) {
	switch cmd.Name {
	case "ALLOC":
		h, err := eng.Alloc()
		reply(wr, log, err, func() { fmt.Fprintln(wr, h) })
	case "READ":
		h, perr := strconv.ParseUint(cmd.Args[0], 10, 64)
		if perr != nil {
			fmt.Fprintln(wr, "ERR: bad handle")
			return
		}
		data, err := eng.Read(h)
		reply(wr, log, err, func() { fmt.Fprintln(wr, string(data)) })
	case "WRITE":
		h, perr := strconv.ParseUint(cmd.Args[0], 10, 64)
		if perr != nil {
			fmt.Fprintln(wr, "ERR: bad handle")
			return
		}
		err := eng.Write(h, []byte(cmd.Args[1]))
		reply(wr, log, err, func() { fmt.Fprintln(wr, "OK") })
	case "DELETE":
		h, perr := strconv.ParseUint(cmd.Args[0], 10, 64)
		if perr != nil {
			fmt.Fprintln(wr, "ERR: bad handle")
			return
		}
		err := eng.Delete(h)
		reply(wr, log, err, func() { fmt.Fprintln(wr, "OK") })
	case "READROOT":
		data, err := eng.ReadRoot()
		reply(wr, log, err, func() { fmt.Fprintln(wr, string(data)) })
	case "WRITEROOT":
		err := eng.WriteRoot([]byte(cmd.Args[0]))
		reply(wr, log, err, func() { fmt.Fprintln(wr, "OK") })
	case "PUT":
		_, err := eng.Put(cmd.Args[0], []byte(cmd.Args[1]))
		reply(wr, log, err, func() { fmt.Fprintln(wr, "OK") })
	case "GET":
		data, err := eng.Get(cmd.Args[0])
		reply(wr, log, err, func() { fmt.Fprintln(wr, string(data)) })
	case "RM":
		err := eng.Remove(cmd.Args[0])
		reply(wr, log, err, func() { fmt.Fprintln(wr, "OK") })
	case "LS":
		names, err := eng.List()
		reply(wr, log, err, func() {
			for _, n := range names {
				fmt.Fprintln(wr, n)
			}
		})
	case "STAT":
		h, perr := strconv.ParseUint(cmd.Args[0], 10, 64)
		if perr != nil {
			fmt.Fprintln(wr, "ERR: bad handle")
			return
		}
		st, err := eng.Stat(h)
		reply(wr, log, err, func() { fmt.Fprintln(wr, st.String()) })
	default:
		fmt.Fprintln(wr, "ERR: unknown command")
	}
}

func reply(wr *bufio.Writer, log *logrus.Entry, err error, onSuccess func()) {
	if err != nil {
		log.WithError(err).Debug("netserve: command failed")
		fmt.Fprintln(wr, "ERR:", err)
		return
	}
	onSuccess()
}

func printHelp(wr *bufio.Writer) {
	fmt.Fprintln(wr, "Commands:")
	fmt.Fprintln(wr, "  ALLOC | READ <handle> | WRITE <handle> <data> | DELETE <handle>")
	fmt.Fprintln(wr, "  READROOT | WRITEROOT <data>")
	fmt.Fprintln(wr, "  PUT <name> <data> | GET <name> | RM <name> | LS")
	fmt.Fprintln(wr, "  STAT <handle> | AUTH <token> | HELP | EXIT | QUIT")
}
