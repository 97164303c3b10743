package ask

import "errors"

// ErrNoAnswerService is reported when the view was built without an answer service.
var ErrNoAnswerService = errors.New("answer service is required")
