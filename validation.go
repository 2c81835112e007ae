package blocklog

import (
	"sync"

	smerrors "github.com/Station-Manager/errors"
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate
var once sync.Once

func validateOptions(opts *Options) error {
	const op smerrors.Op = "blocklog.validateOptions"
	if opts == nil {
		return smerrors.New(op).Msg(errMsgNilOptions)
	}

	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})

	if err := validate.Struct(opts); err != nil {
		return smerrors.New(op).Err(err).Msg(errMsgOptionsInvalid)
	}

	return nil
}
