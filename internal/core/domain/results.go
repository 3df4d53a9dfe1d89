package domain

// AddResult is the outcome of adding a wallet to a network.
type AddResult int

const (
	Added AddResult = iota
	AlreadyPresent
	UnknownNetwork
)

func (r AddResult) String() string {
	switch r {
	case Added:
		return "added"
	case AlreadyPresent:
		return "already_present"
	case UnknownNetwork:
		return "unknown_network"
	default:
		return "unknown"
	}
}

// RemoveResult is the outcome of removing a wallet from a network.
type RemoveResult int

const (
	Removed RemoveResult = iota
	NotFound
	RemoveUnknownNetwork
)

func (r RemoveResult) String() string {
	switch r {
	case Removed:
		return "removed"
	case NotFound:
		return "not_found"
	case RemoveUnknownNetwork:
		return "unknown_network"
	default:
		return "unknown"
	}
}

// RegisterResult is the outcome of registering a network.
type RegisterResult int

const (
	Registered RegisterResult = iota
	AlreadyExists
)

func (r RegisterResult) String() string {
	if r == Registered {
		return "registered"
	}
	return "already_exists"
}

// UnsubscribeResult is the outcome of removing a subscriber.
type UnsubscribeResult int

const (
	Unsubscribed UnsubscribeResult = iota
	NotSubscribed
)

func (r UnsubscribeResult) String() string {
	if r == Unsubscribed {
		return "removed"
	}
	return "not_subscribed"
}

// NetworkResult pairs a network with the result of a bulk add.
type NetworkResult struct {
	Network     NetworkName
	DisplayName string
	Result      AddResult
}
