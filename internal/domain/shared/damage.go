package shared

// DamageType categorizes damage for resistances and immunities
type DamageType string

const (
	DamageTypeSlashing    DamageType = "slashing"
	DamageTypePiercing    DamageType = "piercing"
	DamageTypeBludgeoning DamageType = "bludgeoning"
	DamageTypeFire        DamageType = "fire"
	DamageTypeCold        DamageType = "cold"
	DamageTypeLightning   DamageType = "lightning"
	DamageTypeThunder     DamageType = "thunder"
	DamageTypeAcid        DamageType = "acid"
	DamageTypePoison      DamageType = "poison"
	DamageTypeNecrotic    DamageType = "necrotic"
	DamageTypeRadiant     DamageType = "radiant"
	DamageTypePsychic     DamageType = "psychic"
	DamageTypeForce       DamageType = "force"
)

// Disposition classifies how an NPC relates to the player
type Disposition string

const (
	DispositionHostile  Disposition = "hostile"
	DispositionNeutral  Disposition = "neutral"
	DispositionFriendly Disposition = "friendly"
)
