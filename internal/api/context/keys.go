package context

type Key string

const (
	Identity Key = "identity"
	User     Key = "user"
	Org      Key = "organization"
)
