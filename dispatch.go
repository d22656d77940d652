package lattice

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"runtime"
	"strings"

	"github.com/fatih/color"
)

// Dispatcher runs a matched request through a pipeline chain and into a
// freshly constructed handler.
type Dispatcher interface {
	Dispatch(s *State) (*Response, error)
}

type dispatcherImpl struct {
	newHandler NewHandler
	chain      PipelineChain
	pipelines  *PipelineSet
}

// NewDispatcher creates a Dispatcher over the given handler factory and
// pipeline chain. The chain's pipelines are resolved against pipelines at
// dispatch time, per request.
func NewDispatcher(nh NewHandler, chain PipelineChain, pipelines *PipelineSet) Dispatcher {
	return &dispatcherImpl{newHandler: nh, chain: chain, pipelines: pipelines}
}

// Dispatch constructs fresh middleware and handler instances and runs the
// request through them. A panic anywhere inside the chain is trapped here:
// the stack is reported and the request resolves to an empty 500 instead
// of taking the process down. http.ErrAbortHandler is re-panicked so the
// server can abort the connection without logging.
func (d *dispatcherImpl) Dispatch(s *State) (res *Response, err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			if rvr == http.ErrAbortHandler {
				panic(rvr)
			}

			stack := make([]byte, 4<<10)
			for {
				n := runtime.Stack(stack, false)
				if n < len(stack) {
					stack = stack[:n]
					break
				}
				stack = make([]byte, 2*len(stack))
			}
			printPanicStack(rvr, stack)

			res = NewResponse(http.StatusInternalServerError)
			err = nil
		}
	}()

	return d.chain.call(d.pipelines, s, func(s *State) (*Response, error) {
		h, err := d.newHandler.NewHandler()
		if err != nil {
			return nil, err
		}
		return h.Handle(s)
	})
}

// for ability to test the panic report
var panicStackWriter io.Writer = os.Stderr

var (
	panicTitleColor  = color.New(color.FgCyan, color.Bold)
	panicValueColor  = color.New(color.FgBlue, color.Bold)
	panicMarkerColor = color.New(color.FgRed, color.Bold)
	panicFrameColor  = color.New(color.FgYellow)
)

// printPanicStack writes a colored panic report, trimming the trap's own
// frames so the first line shown is the panic site.
func printPanicStack(rvr any, stack []byte) {
	buf := &bytes.Buffer{}
	panicTitleColor.Fprint(buf, "\n panic: ")
	panicValueColor.Fprintf(buf, "%v", rvr)
	fmt.Fprint(buf, "\n\n")

	lines := strings.Split(string(stack), "\n")
	start := 0
	for i, line := range lines {
		if strings.HasPrefix(line, "panic(") {
			start = i + 2
			break
		}
	}

	first := true
	for _, line := range lines[start:] {
		if line == "" {
			continue
		}
		if first && !strings.HasPrefix(line, "\t") {
			panicMarkerColor.Fprint(buf, " -> ")
			first = false
		} else {
			fmt.Fprint(buf, "    ")
		}
		panicFrameColor.Fprintf(buf, "%s\n", strings.TrimSpace(line))
	}
	panicStackWriter.Write(buf.Bytes())
}
