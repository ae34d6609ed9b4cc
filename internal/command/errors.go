package command

import "fmt"

// MissingParameterError reports a command used without its required
// arguments. The message is the expected syntax.
type MissingParameterError struct {
	Kind Kind
}

func (e *MissingParameterError) Error() string {
	return "Usage: " + e.Kind.Usage()
}

// InvalidAmountError reports an amount token that is not a positive number.
type InvalidAmountError struct {
	Raw string
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("Invalid amount: %s", e.Raw)
}

// UnknownCommandError reports text that resolves to no command.
type UnknownCommandError struct {
	Token string
}

func (e *UnknownCommandError) Error() string {
	return "Unknown command. Type /help to see the list of commands."
}
