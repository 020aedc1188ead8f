package kernel

type AccountID string

func NewAccountID(id string) AccountID { return AccountID(id) }
func (a AccountID) String() string     { return string(a) }
func (a AccountID) IsEmpty() bool      { return string(a) == "" }
