package report

import "toolproof/internal/toolerr"

func asToolErr(err error) (*toolerr.Error, bool) {
	if err == nil {
		return nil, false
	}
	return toolerr.As(err)
}
