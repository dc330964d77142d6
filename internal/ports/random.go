package ports

type Random interface {
	IntN(n int) int
	Uint64() uint64
}
