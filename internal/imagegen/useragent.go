package imagegen

// userAgents are rotated across retry attempts. Selection is a pure
// function of the attempt counter so concurrent calls share no state.
var userAgents = []string{
	"MedusaXD-Bot/2.0",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
}

func userAgent(attempt int) string {
	if attempt < 0 {
		attempt = 0
	}
	return userAgents[attempt%len(userAgents)]
}
