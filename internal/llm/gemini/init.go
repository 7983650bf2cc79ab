package gemini

import "talentscout/interview/internal/llm"

// Register Gemini provider on package import
func init() {
	llm.RegisterProvider(providerName, func() (llm.Provider, error) {
		config, err := NewConfig()
		if err != nil {
			return nil, err
		}
		client, err := NewClient(config)
		if err != nil {
			return nil, err
		}
		return client, nil
	})
}
