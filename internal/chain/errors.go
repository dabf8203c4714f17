package chain

import "fmt"

// RejectKind names why accept_block refused a block.
type RejectKind string

const (
	DuplicateBlock  RejectKind = "DuplicateBlock"
	NotConnected    RejectKind = "NotConnected"
	WrongHeight     RejectKind = "WrongHeight"
	BadMerkle       RejectKind = "BadMerkle"
	WeakProofOfWork RejectKind = "WeakProofOfWork"
	CoinbaseTooLarge RejectKind = "CoinbaseTooLarge"
)

// RejectError reports a block-acceptance failure with its named kind.
type RejectError struct {
	Kind RejectKind
	Msg  string
}

func (e *RejectError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func reject(kind RejectKind, format string, args ...any) error {
	return &RejectError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
