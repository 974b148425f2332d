package ledger

import (
	"github.com/quantumauth-io/algo-quickstart/internal/constants"
	"github.com/quantumauth-io/algo-quickstart/internal/failure"
)

// AppParams are the compiled programs and call arguments of an application
// transaction. Programs are only set on creation.
type AppParams struct {
	ApprovalProgram []byte
	ClearProgram    []byte
	Args            [][]byte
}

// BuildAppCreate deploys an application with empty state schemas and no
// extra program pages.
func BuildAppCreate(sender string, approval, clearProg []byte, args [][]byte) (*Intent, error) {
	if err := ValidateAddress("sender", sender); err != nil {
		return nil, err
	}
	if len(approval) == 0 || len(clearProg) == 0 {
		return nil, failure.Validationf("ledger: approval and clear programs are required")
	}
	if n := len(approval) + len(clearProg); n > constants.MaxProgramBytes {
		return nil, failure.Validationf("ledger: programs are %d bytes, limit is %d", n, constants.MaxProgramBytes)
	}
	if err := validateAppArgs(args); err != nil {
		return nil, err
	}
	return &Intent{
		kind:   KindAppCreate,
		sender: sender,
		app: &AppParams{
			ApprovalProgram: append([]byte(nil), approval...),
			ClearProgram:    append([]byte(nil), clearProg...),
			Args:            copyArgs(args),
		},
	}, nil
}

// BuildAppCall is a NoOp call of an existing application.
func BuildAppCall(sender string, appID uint64, args [][]byte) (*Intent, error) {
	if err := ValidateAddress("sender", sender); err != nil {
		return nil, err
	}
	if appID == 0 {
		return nil, failure.Validationf("ledger: application id must be positive")
	}
	if err := validateAppArgs(args); err != nil {
		return nil, err
	}
	return &Intent{
		kind:   KindAppCall,
		sender: sender,
		appID:  appID,
		app:    &AppParams{Args: copyArgs(args)},
	}, nil
}

func validateAppArgs(args [][]byte) error {
	if len(args) > constants.MaxAppArgs {
		return failure.Validationf("ledger: %d application arguments, limit is %d", len(args), constants.MaxAppArgs)
	}
	total := 0
	for _, a := range args {
		total += len(a)
	}
	if total > constants.MaxAppArgBytes {
		return failure.Validationf("ledger: application arguments are %d bytes, limit is %d", total, constants.MaxAppArgBytes)
	}
	return nil
}

func copyArgs(args [][]byte) [][]byte {
	if len(args) == 0 {
		return nil
	}
	out := make([][]byte, len(args))
	for i, a := range args {
		out[i] = append([]byte(nil), a...)
	}
	return out
}
