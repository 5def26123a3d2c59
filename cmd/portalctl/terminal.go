package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"portalConsole/internal/modules/portal/application/port"
)

// terminalPresenter asks on the terminal and prints alerts and navigation.
type terminalPresenter struct {
	mu         sync.Mutex
	in         *bufio.Reader
	out        io.Writer
	errOut     io.Writer
	autoAccept bool
}

func newTerminalPresenter(in *bufio.Reader, out, errOut io.Writer, autoAccept bool) *terminalPresenter {
	return &terminalPresenter{in: in, out: out, errOut: errOut, autoAccept: autoAccept}
}

func (p *terminalPresenter) Confirm(ctx context.Context, prompt port.Prompt) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.autoAccept {
		return true, nil
	}
	fmt.Fprintf(p.errOut, "%s: %s [y/N] ", prompt.Title, prompt.Message)

	type answer struct {
		line string
		err  error
	}
	read := make(chan answer, 1)
	go func() {
		line, err := p.in.ReadString('\n')
		read <- answer{line, err}
	}()
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case a := <-read:
		if a.err != nil && a.line == "" {
			if a.err == io.EOF {
				return false, nil
			}
			return false, fmt.Errorf("read answer: %w", a.err)
		}
		switch strings.ToLower(strings.TrimSpace(a.line)) {
		case "y", "yes":
			return true, nil
		default:
			return false, nil
		}
	}
}

func (p *terminalPresenter) Notify(_ context.Context, alert port.Alert) {
	fmt.Fprintf(p.errOut, "%s: %s\n", alert.Severity, alert.Message)
}

// Navigate prints the record handed to the edit view.
func (p *terminalPresenter) Navigate(_ context.Context, nav port.Navigation) {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	_ = enc.Encode(map[string]any{"path": nav.Path, "source": nav.State.Source, "record": nav.State.Data})
}

var (
	_ port.Confirmer = (*terminalPresenter)(nil)
	_ port.Notifier  = (*terminalPresenter)(nil)
	_ port.Navigator = (*terminalPresenter)(nil)
)
