package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	hasFamily(ctx context.Context) bool
	Join(ctx context.Context) error
	Leave(ctx context.Context) error
	AddDiary(ctx context.Context) error
	ListDiary(ctx context.Context) error
	ReadDiary(ctx context.Context, id string) error
	DeleteDiary(ctx context.Context, id string) error
	AddLesson(ctx context.Context) error
	ListLessons(ctx context.Context) error
	AddTask(ctx context.Context) error
	ListTasks(ctx context.Context) error
	CompleteTask(ctx context.Context, id string) error
	AddGift(ctx context.Context) error
	ListGifts(ctx context.Context) error
	Redeem(ctx context.Context, id string) error
	LogPoints(ctx context.Context) error
	Balance(ctx context.Context) error
	History(ctx context.Context) error
}

const (
	helpNoFamily = "Available commands: join, help, exit"
	helpFamily   = "Available commands: diary, diaries, read <id>, rm <id>, lesson, lessons, " +
		"task, tasks, done <task-id>, gift, gifts, redeem <gift-id>, points, balance, history, leave, exit"
)

// withID maps commands that need one positional argument.
var withID = map[string]func(execIface, context.Context, string) error{
	"read":   execIface.ReadDiary,
	"rm":     execIface.DeleteDiary,
	"done":   execIface.CompleteTask,
	"redeem": execIface.Redeem,
}

// noArgs maps commands that prompt for their input.
var noArgs = map[string]func(execIface, context.Context) error{
	"join":    execIface.Join,
	"leave":   execIface.Leave,
	"diary":   execIface.AddDiary,
	"diaries": execIface.ListDiary,
	"lesson":  execIface.AddLesson,
	"lessons": execIface.ListLessons,
	"task":    execIface.AddTask,
	"tasks":   execIface.ListTasks,
	"gift":    execIface.AddGift,
	"gifts":   execIface.ListGifts,
	"points":  execIface.LogPoints,
	"balance": execIface.Balance,
	"history": execIface.History,
}

// runREPL reads commands line by line from r and dispatches them to a until
// end of input or "exit"/"quit". Command errors are printed and the loop
// continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, r *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("kk %s> ", statusFn()))

		line, err := r.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch {
		case cmd == "help":
			if a.hasFamily(ctx) {
				printlnFn(helpFamily)
			} else {
				printlnFn(helpNoFamily)
			}

		case cmd == "exit" || cmd == "quit":
			printlnFn("Bye!")
			return

		case withID[cmd] != nil:
			if len(args) == 0 {
				printlnFn(fmt.Sprintf("Usage: %s <id>", cmd))
				continue
			}
			report(withID[cmd](a, ctx, args[0]))

		case noArgs[cmd] != nil:
			report(noArgs[cmd](a, ctx))

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func report(err error) {
	if err != nil {
		printlnFn("Error:", describe(err))
	}
}
