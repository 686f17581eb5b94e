package enums

// LikeTarget names the entity a like row points at.
type LikeTarget string

const (
	LikeTargetProduct LikeTarget = "product"
	LikeTargetStore   LikeTarget = "store"
)

// String implements fmt.Stringer.
func (t LikeTarget) String() string {
	return string(t)
}
