package filter

// Filter defines the interface for a set of watched addresses
type Filter interface {
	// Contains checks if an address is tracked
	Contains(address string) bool

	// Add adds an address, reporting whether it was new
	Add(address string) bool

	// Remove removes an address, reporting whether it was present
	Remove(address string) bool

	// Size returns the number of tracked addresses
	Size() int

	// Addresses returns the tracked addresses as originally written
	Addresses() []string
}
