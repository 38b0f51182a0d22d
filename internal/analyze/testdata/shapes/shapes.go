package shapes

import (
	"net/netip"
	"time"
)

type Number interface {
	Value() float64
}

type Super[T any] struct {
	Thing T
}

type Bound[T Number] struct {
	Super[T]
}

type Int struct {
	Super[int32]
}

type Color int

const (
	Red Color = iota
	Green
	Blue
)

type Name string

type Names []string

type Index map[string][]int

type Shape interface {
	Number
	Area() float64
	Scale(f float64) Shape
}

type Record struct {
	*Int
	Shape

	ID     Name
	Tags   Names
	Seen   time.Time
	Where  netip.Addr
	Paint  Color
	Lookup map[string]*Record
	hidden int
}
