// Command feascheck answers a single basket feasibility question from
// stdin. Input is "n c e" followed by n "price calorie" pairs, all
// whitespace-separated non-negative integers; output is exactly "Yes" or
// "No" on stdout. Malformed or oversized input is a diagnostic on stderr
// and a non-zero exit, never a "No".
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/mealdeck/basket-engine/internal/solver"
	"github.com/mealdeck/basket-engine/pkg/models"
)

// Exit codes: 0 both verdicts, 1 bad input, 2 solver failure.
const (
	exitOK           = 0
	exitInvalidInput = 1
	exitInternal     = 2
)

func main() {
	os.Exit(run(os.Stdin, os.Stdout, os.Stderr))
}

func run(stdin io.Reader, stdout, stderr io.Writer) int {
	in := bufio.NewScanner(stdin)
	in.Split(bufio.ScanWords)

	readInt := func(field string) (int64, bool) {
		if !in.Scan() {
			if err := in.Err(); err != nil {
				fmt.Fprintf(stderr, "feascheck: reading %s: %v\n", field, err)
			} else {
				fmt.Fprintf(stderr, "feascheck: input truncated before %s\n", field)
			}
			return 0, false
		}
		v, err := strconv.ParseInt(in.Text(), 10, 64)
		if err != nil {
			fmt.Fprintf(stderr, "feascheck: %s: %q is not an integer\n", field, in.Text())
			return 0, false
		}
		if v < 0 {
			fmt.Fprintf(stderr, "feascheck: %s must be non-negative, got %d\n", field, v)
			return 0, false
		}
		return v, true
	}

	n, ok := readInt("item count")
	if !ok {
		return exitInvalidInput
	}
	targetPrice, ok := readInt("price target")
	if !ok {
		return exitInvalidInput
	}
	targetCalories, ok := readInt("calorie target")
	if !ok {
		return exitInvalidInput
	}

	engine := solver.NewEngine(solver.DefaultConfig())

	// Reject an oversized count before allocating or scanning n pairs.
	if n > int64(engine.Caps().MaxItems) {
		fmt.Fprintf(stderr, "feascheck: item count %d exceeds capacity %d\n", n, engine.Caps().MaxItems)
		return exitInvalidInput
	}

	q := models.BasketQuery{
		Items:          make([]models.Item, 0, n),
		TargetPrice:    targetPrice,
		TargetCalories: targetCalories,
	}
	for i := int64(0); i < n; i++ {
		price, ok := readInt(fmt.Sprintf("item %d price", i))
		if !ok {
			return exitInvalidInput
		}
		calories, ok := readInt(fmt.Sprintf("item %d calories", i))
		if !ok {
			return exitInvalidInput
		}
		q.Items = append(q.Items, models.Item{Price: price, Calories: calories})
	}

	if err := engine.ValidateQuery(q); err != nil {
		fmt.Fprintf(stderr, "feascheck: %v\n", err)
		return exitInvalidInput
	}

	feasible, _, err := engine.Solve(q)
	if err != nil {
		fmt.Fprintf(stderr, "feascheck: %v\n", err)
		return exitInternal
	}

	out := bufio.NewWriter(stdout)
	if feasible {
		fmt.Fprintln(out, "Yes")
	} else {
		fmt.Fprintln(out, "No")
	}
	if err := out.Flush(); err != nil {
		fmt.Fprintf(stderr, "feascheck: writing verdict: %v\n", err)
		return exitInternal
	}
	return exitOK
}
