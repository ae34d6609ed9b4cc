// Command ledger-repl talks to an in-process ledger bot from the terminal.
// Each input line is one chat message sent by a single local user.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"ledgerbot/internal/bot"
	"ledgerbot/internal/cli"
	"ledgerbot/internal/command"
	"ledgerbot/internal/config"
	"ledgerbot/internal/core"
	"ledgerbot/internal/ledger"
	applog "ledgerbot/internal/log"
)

func main() {
	user := flag.String("user", "local", "user id the messages are sent as")
	verbose := flag.Bool("v", false, "log to stderr at debug level")
	flag.Parse()

	cli.LoadEnvFile()
	cfg := config.Load()

	level, out := "error", io.Writer(io.Discard)
	if *verbose {
		level, out = "debug", os.Stderr
	}
	logger := cli.SetupLogger(level, out).WithComponent(applog.ComponentREPL)

	dispatcher := command.NewDispatcher(ledger.NewRegistry(), core.NewFormatter(cfg.Locale), logger)
	b := bot.New(dispatcher, nil, logger)

	ctx, cancel := cli.SignalContext(context.Background(), logger)
	defer cancel()

	if err := run(ctx, b, *user, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, b *bot.Bot, user string, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "Type /help for commands, Ctrl-D to quit.")
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}
		reply, err := b.Handle(ctx, bot.Message{UserID: user, Text: scanner.Text()})
		if err != nil {
			return err
		}
		fmt.Fprintln(out, reply.Text)
	}
}
