package a

import "time"

//typeenum:union
type valueVariants interface {
	Number(int64)
	Text(string)
	Pair(uint8, uint8)
	//typeenum:skip
	Raw(string)
}

// Event is derived with whole-tuple accessors.
//
//typeenum:union name=Event,strategy=whole-tuple
type eventVariants interface {
	At(time.Time)
	Span(time.Time, time.Duration)
}

//typeenum:union name=Dup
type dupVariants interface {
	Left(int)
	Right(int) // want `Dup: variants Left and Right both hold int`
}

//typeenum:union name=Unit
type unitVariants interface {
	Empty() // want `unsupported variant shape: variant Empty has no payload fields`
}

//typeenum:union name=Point
type pointVariants interface {
	XY(x, y int) // want `variant XY uses named fields`
}

//typeenum:union name=Getter
type getterVariants interface {
	Get(int) error // want `variant Get declares results`
}

//typeenum:union name=List
type listVariants interface {
	Many(...int) // want `variant Many is variadic`
}

//typeenum:union name=Rec
type recVariants struct { // want `invalid target shape: recVariants is a struct type`
	X int
}

//typeenum:union name=Packed,strategy=packed
type packedVariants interface { // want `unknown strategy "packed"`
	One(int)
}

//typeenum:union name=ValuePair
type valuePairVariants interface { // want `identifier ValuePair is generated for both Value and ValuePair`
	Only(bool)
}

//typeenum:union name=Opt,color=red // want `unknown //typeenum:union option color`
type optVariants interface {
	Flag(bool)
}

// typeenum:union // want `malformed directive //typeenum:union: remove the space after //`
type proseVariants interface {
	Word(string)
}

//typeenum:skip // want `//typeenum:skip must document a method of a union definition`
func helper() {}

//typeenum:union // want `//typeenum:union must document a type declaration`
var unused = 1

//typeenum:frobnicate // want `unknown directive //typeenum:frobnicate`
type plain int

// This mentions typeenum:union in prose and is not a directive.
type notes string
