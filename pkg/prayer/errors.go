package prayer

// FetchError reports that the remote provider could not produce a schedule
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return "fetch prayer times: " + e.Op + ": " + e.Err.Error()
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
