package models

// LoadState is the lifecycle of an asynchronous view operation.
type LoadState string

const (
	StateIdle    LoadState = "idle"
	StateLoading LoadState = "loading"
	StateSuccess LoadState = "success"
	StateError   LoadState = "error"
)

// Loading tracks one operation of a view together with its result.
type Loading[T any] struct {
	State   LoadState
	Data    T
	Err     error
	Message string
}

func Idle[T any]() Loading[T] { return Loading[T]{State: StateIdle} }

func Pending[T any]() Loading[T] { return Loading[T]{State: StateLoading} }

func Succeeded[T any](data T) Loading[T] {
	return Loading[T]{State: StateSuccess, Data: data}
}

// Failed records err; message defaults to the error text.
func Failed[T any](err error, message string) Loading[T] {
	if message == "" && err != nil {
		message = err.Error()
	}
	return Loading[T]{State: StateError, Err: err, Message: message}
}

func (l Loading[T]) IsLoading() bool { return l.State == StateLoading }
