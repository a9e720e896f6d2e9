package registration

import (
	"strings"

	"ms-registration/internal/models"
)

const CoffeePartyCode = "COFFEE-2025-0726"

// wellKnownEvents maps recurring-event aliases (and their canonical codes) to
// the definition that is upserted before a signup resolves the event.
var wellKnownEvents = map[string]func() models.Event{
	"coffee-party":                   coffeeParty,
	strings.ToLower(CoffeePartyCode): coffeeParty,
}

// LookupAlias returns the canonical definition for a well-known code.
func LookupAlias(code string) (models.Event, bool) {
	build, ok := wellKnownEvents[strings.ToLower(strings.TrimSpace(code))]
	if !ok {
		return models.Event{}, false
	}
	return build(), true
}

func coffeeParty() models.Event {
	return models.Event{
		Code:            CoffeePartyCode,
		Name:            "Coffee Party in Wavedance",
		EventType:       "coffee_party",
		Location:        "浪花舞往海邊藝文聚落｜261宜蘭縣頭城鎮演海路二段405號",
		StartDate:       "2025-07-26",
		StartTime:       "08:30:00",
		MaxParticipants: 50,
		PriceConfig: map[string]float64{
			"default":              300,
			models.TicketEarlyBird: 300,
			models.TicketOnsite:    400,
		},
		Description:   "週六早晨咖啡派對，DJ Louis 現場演出。來點音樂、來點咖啡、來點 chill。",
		IncludedItems: []string{"咖啡一杯", "麵包一份", "DJ音樂表演"},
		CustomFields: map[string]any{
			"dj_name":        "DJ Louis (Wolfie)",
			"dj_description": "A healer. A pioneer. A lover. A DJ. A pilot in the making.",
			"bank_account": map[string]any{
				"bank":    "國泰世華銀行 (宜蘭分行)",
				"code":    "013",
				"account": "105035006962",
				"name":    "浪花舞號王思敏",
			},
		},
		IsActive: true,
	}
}
