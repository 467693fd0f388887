package clientconfig

const (
	// InitialVersion is the version of a configuration that has never been written.
	InitialVersion = 1

	DefaultTimezone    = "UTC"
	DefaultAIModel     = "gpt-4o-mini"
	DefaultTemperature = 0.2
	DefaultMaxTokens   = 800
)

// DefaultLabelMap returns the canonical categories in their display order.
func DefaultLabelMap() LabelMap {
	return LabelMap{
		{Category: "Sales", Label: "Sales"},
		{Category: "Support", Label: "Support"},
		{Category: "Promo", Label: "Promotions"},
		{Category: "Banking", Label: "Banking"},
		{Category: "Manager", Label: "Manager"},
		{Category: "Suppliers", Label: "Suppliers"},
		{Category: "Urgent", Label: "Urgent"},
		{Category: "Misc", Label: "Misc"},
	}
}

// Default materializes the configuration served for a tenant that has never written one.
func Default(clientID string) ClientConfiguration {
	return ClientConfiguration{
		ClientID: clientID,
		Version:  InitialVersion,
		Client: ClientInfo{
			Name:     "",
			Timezone: DefaultTimezone,
			Website:  "",
			Phones:   []string{},
			Address:  "",
			Hours:    map[string]string{},
		},
		Channels: Channels{
			Email: EmailChannel{
				Provider: ProviderGmail,
				LabelMap: DefaultLabelMap(),
			},
		},
		People:    People{Managers: []Manager{}},
		Suppliers: []Supplier{},
		Signature: Signature{
			Mode:                  SignatureDefault,
			CustomText:            nil,
			BlockNamesInSignature: true,
		},
		AI: AISettings{
			Model:       DefaultAIModel,
			Temperature: DefaultTemperature,
			MaxTokens:   DefaultMaxTokens,
			Locked:      true,
		},
	}
}
