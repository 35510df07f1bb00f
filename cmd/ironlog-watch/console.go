package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/claude/ironlog/internal/companion"
	"github.com/claude/ironlog/internal/models"
	"github.com/claude/ironlog/internal/superset"
)

const help = `commands:
  start                 start the routine
  pause | resume
  done                  complete the current set
  toggle <ex> <set>     toggle a set (1-based)
  set <reps> <weight>   edit the current set
  next | prev           move between exercises
  rest <seconds> | skip | min
  status
  end | discard
  quit`

// console drives an Engine from line commands.
type console struct {
	engine  *companion.Engine
	routine models.Routine
	out     io.Writer
}

// run reads commands until EOF or quit.
func (c *console) run(ctx context.Context, in io.Reader) error {
	fmt.Fprintln(c.out, help)
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" {
			return nil
		}
		if err := c.exec(ctx, fields[0], fields[1:]); err != nil {
			fmt.Fprintln(c.out, "error:", err)
		}
	}
	return scanner.Err()
}

func (c *console) exec(ctx context.Context, cmd string, args []string) error {
	e := c.engine
	switch cmd {
	case "start":
		if err := e.StartWorkout(ctx, c.routine); err != nil {
			return err
		}
	case "pause":
		e.PauseWorkout()
	case "resume":
		e.ResumeWorkout()
	case "done":
		e.CompleteCurrentSet()
	case "toggle":
		ex, set, err := c.setAt(args)
		if err != nil {
			return err
		}
		e.ToggleSet(ex.ID, set.ID)
	case "set":
		if len(args) != 2 {
			return errors.New("usage: set <reps> <weight>")
		}
		reps, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("reps: %w", err)
		}
		weight, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("weight: %w", err)
		}
		cur := e.Cursor()
		exercises := e.Exercises()
		if cur.Exercise >= len(exercises) || cur.Set >= len(exercises[cur.Exercise].Sets) {
			return companion.ErrNoActiveWorkout
		}
		ex := exercises[cur.Exercise]
		e.UpdateSet(ex.ID, ex.Sets[cur.Set].ID, reps, weight)
	case "next":
		e.NextExercise()
	case "prev":
		e.PreviousExercise()
	case "rest":
		if len(args) != 1 {
			return errors.New("usage: rest <seconds>")
		}
		secs, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("seconds: %w", err)
		}
		e.StartRest(secs)
	case "skip":
		e.SkipRest()
	case "min":
		e.ToggleRestMinimized()
	case "status":
	case "end":
		p, err := e.EndWorkout(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "workout %s finished: %d exercises, routine update: %v\n",
			p.ID, len(p.Exercises), p.ShouldUpdateRoutine)
		return nil
	case "discard":
		e.DiscardWorkout()
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	c.status()
	return nil
}

// setAt resolves 1-based exercise and set numbers.
func (c *console) setAt(args []string) (companion.ActiveExercise, companion.ActiveSet, error) {
	if len(args) != 2 {
		return companion.ActiveExercise{}, companion.ActiveSet{}, errors.New("usage: toggle <ex> <set>")
	}
	ei, err1 := strconv.Atoi(args[0])
	si, err2 := strconv.Atoi(args[1])
	exercises := c.engine.Exercises()
	if err1 != nil || err2 != nil || ei < 1 || ei > len(exercises) || si < 1 || si > len(exercises[ei-1].Sets) {
		return companion.ActiveExercise{}, companion.ActiveSet{}, fmt.Errorf("no set %s/%s", args[0], args[1])
	}
	ex := exercises[ei-1]
	return ex, ex.Sets[si-1], nil
}

func (c *console) status() {
	e := c.engine
	live := e.Live()
	fmt.Fprintf(c.out, "[%s] %s  hr %.0f  kcal %.0f\n", e.State(), live.Elapsed.Truncate(time.Second), live.HeartRate, live.ActiveCalories)

	exercises := e.Exercises()
	labels := superset.Labels(exercises)
	cur := e.Cursor()
	for i, ex := range exercises {
		marker := " "
		if i == cur.Exercise {
			marker = ">"
		}
		label := ""
		if l, ok := labels[ex.SupersetGroup]; ok {
			label = " (" + l + ")"
		}
		fmt.Fprintf(c.out, "%s %d. %s%s\n", marker, i+1, ex.Name, label)
		for j, s := range ex.Sets {
			check := "[ ]"
			if s.IsCompleted {
				check = "[x]"
			}
			pointer := " "
			if i == cur.Exercise && j == cur.Set {
				pointer = "*"
			}
			fmt.Fprintf(c.out, "   %s%s %d x %.1f kg\n", pointer, check, s.ActualReps, s.ActualWeight)
		}
	}

	if rest := e.Rest(); rest.State != companion.RestInactive {
		fmt.Fprintf(c.out, "rest %s: %ds of %ds\n", rest.State, rest.Remaining, rest.Total)
	}
	if err := e.LastError(); err != nil {
		fmt.Fprintln(c.out, "last error:", err)
	}
}
