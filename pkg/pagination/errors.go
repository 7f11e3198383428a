package pagination

import "errors"

var errEmptyPage = errors.New("backend returned no page")
