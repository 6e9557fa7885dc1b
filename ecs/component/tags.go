package component

type PlayerTag struct{}

var PlayerTagComponent = NewComponentKind[PlayerTag]()

// SolidTag marks level geometry.
type SolidTag struct{}

var SolidTagComponent = NewComponentKind[SolidTag]()

// EffectTag marks purely visual entities such as explosions.
type EffectTag struct{}

var EffectTagComponent = NewComponentKind[EffectTag]()
