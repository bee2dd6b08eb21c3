package command

import "errors"

// errUnchanged aborts a Mutate that has nothing to write
var errUnchanged = errors.New("unchanged")
