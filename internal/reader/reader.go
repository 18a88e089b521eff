package reader

// Records is a header plus rows of raw string cells.
type Records struct {
	Header []string
	Rows   [][]string
}

type Reader interface {
	Read() (*Records, error)
}
