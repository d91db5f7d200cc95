package factor

import "errors"

var ErrWrongKind = errors.New("factor source is of a different kind")
