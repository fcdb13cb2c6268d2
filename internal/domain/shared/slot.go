package shared

// Slot identifies where a piece of equipment is worn
type Slot string

const (
	SlotMainHand  Slot = "main_hand"
	SlotOffHand   Slot = "off_hand"
	SlotBody      Slot = "body"
	SlotHead      Slot = "head"
	SlotAccessory Slot = "accessory"
)
