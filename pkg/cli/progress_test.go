package cli

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"
)

func TestSimpleProgress(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf)

	progress.Start(4)
	progress.Update(2)
	progress.Finish()

	output := buf.String()
	if !strings.Contains(output, "Checking:") {
		t.Errorf("output missing prefix: %q", output)
	}
	if !strings.Contains(output, "(4/4)") {
		t.Errorf("output missing final count: %q", output)
	}
}

func TestSimpleProgressNeverMovesBackwards(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf).(*SimpleProgress)

	progress.Start(10)
	progress.Update(7)
	progress.Update(3)

	if progress.done != 7 {
		t.Errorf("done = %d, want 7", progress.done)
	}
}

func TestSimpleProgressZeroTotal(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf)

	progress.Start(0)
	progress.Update(0)
	progress.Finish()

	if strings.Contains(buf.String(), "Checking:") {
		t.Errorf("zero total should not render a bar: %q", buf.String())
	}
}

func TestSimpleProgressError(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf)

	progress.Start(3)
	progress.Error(fmt.Errorf("interrupted"))

	if !strings.Contains(buf.String(), "Error: interrupted") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestSimpleProgressCallback(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf).(*SimpleProgress)
	progress.Start(100)

	cb := progress.Callback()
	var wg sync.WaitGroup
	for i := 1; i <= 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cb(i, 100)
		}()
	}
	wg.Wait()

	if progress.done != 100 {
		t.Errorf("done = %d, want 100", progress.done)
	}
}
