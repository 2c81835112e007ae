package blocklog

import (
	stderrs "errors"
	"strings"

	smerrors "github.com/Station-Manager/errors"
)

// errorInfo is the serialized form of an event's error. It is what
// zerolog.ErrorMarshalFunc emits and what the exception block renders.
type errorInfo struct {
	Message string   `json:"message"`
	Chain   []string `json:"chain,omitempty"`
	Ops     []string `json:"ops,omitempty"`
	History string   `json:"history,omitempty"`
	Root    string   `json:"root,omitempty"`
	RootOp  string   `json:"root_op,omitempty"`
}

func marshalErrorInfo(err error) *errorInfo {
	if err == nil {
		return nil
	}
	chain, ops, root, rootOp := buildErrorChain(err)
	return &errorInfo{
		Message: err.Error(),
		Chain:   chain,
		Ops:     ops,
		History: joinChain(chain),
		Root:    root,
		RootOp:  rootOp,
	}
}

// buildErrorChain walks an error's cause chain and returns:
//   - chain: outermost -> innermost error messages
//   - ops: operation identifiers for DetailedError links ("" if not available)
//   - root: the innermost error message
//   - rootOp: the innermost operation identifier if available
//
// The traversal prefers Station-Manager DetailedError.Cause() and then
// falls back to stdlib errors.Unwrap. It guards against excessive depth
// and repeated messages to avoid cycles.
func buildErrorChain(err error) (chain []string, ops []string, root string, rootOp string) {
	const maxDepth = 50
	visited := 0
	seen := map[string]bool{}

	for err != nil && visited < maxDepth {
		visited++

		if dErr, ok := smerrors.AsDetailedError(err); ok && dErr != nil {
			chain = append(chain, dErr.Error())
			ops = append(ops, string(dErr.Op()))
			err = dErr.Cause()
			continue
		}

		msg := err.Error()
		// avoid infinite loops if messages repeat due to unusual cycles
		if seen[msg] {
			break
		}
		seen[msg] = true
		chain = append(chain, msg)
		ops = append(ops, "")
		err = stderrs.Unwrap(err)
	}

	if len(chain) > 0 {
		root = chain[len(chain)-1]
	}
	if len(ops) > 0 {
		rootOp = ops[len(ops)-1]
	}
	return
}

// joinChain returns a single string for the error chain separated by " -> ".
func joinChain(chain []string) string {
	if len(chain) == 0 {
		return emptyString
	}
	return strings.Join(chain, " -> ")
}
