package core

// Hash is the hex-encoded sha256 content hash of a stored upload.
type Hash string

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}
