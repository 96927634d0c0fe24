package web

// Service is one card of the services section.
type Service struct {
	Icon        string
	Title       string
	Description string
}

// Stat is one figure of the about section.
type Stat struct {
	Value string
	Label string
}

// ContactDetail is one line of the contact section.
type ContactDetail struct {
	Label string
	Value string
}

// Home is the fixed copy of the marketing page.
type Home struct {
	Headline    string
	Accent      string
	Description string
	Services    []Service
	Mission     string
	Strengths   []string
	Stats       []Stat
	ContactText string
	Contact     []ContactDetail
}

// HomeContent returns the marketing page copy.
func HomeContent() Home {
	return Home{
		Headline:    "Innovative IT solutions that",
		Accent:      "build the future",
		Description: "TechCorp supports the digital transformation of companies with leading technology and innovation, delivering sustainable growth and a stronger competitive position.",
		Services: []Service{
			{Icon: "💻", Title: "System Development", Description: "Design and development of custom systems tailored to your needs, built on current technology for efficiency and scalability."},
			{Icon: "☁️", Title: "Cloud Services", Description: "End-to-end support from infrastructure build-out to operations on AWS, Azure, GCP and other major platforms."},
			{Icon: "📱", Title: "Mobile Apps", Description: "Native iOS and Android applications as well as cross-platform development with React Native or Flutter."},
			{Icon: "🤖", Title: "AI & Machine Learning", Description: "Automation built on artificial intelligence and machine learning to raise efficiency and create new value."},
			{Icon: "🔒", Title: "Security", Description: "Comprehensive security solutions from cyber defense to data protection for your most important information assets."},
			{Icon: "📊", Title: "Data Analytics", Description: "Business intelligence from big data collection and analysis to visualization, supporting data-driven decisions."},
		},
		Mission: "TechCorp's mission is to solve social challenges through innovative technology and create a better future. We value long-term partnerships with our clients and aim to grow together.",
		Strengths: []string{
			"Over 10 years of development experience",
			"Continuous investment in research on new technology",
			"Track record across many industries",
			"Fast delivery through agile development",
			"24/7 support",
		},
		Stats: []Stat{
			{Value: "100+", Label: "Projects completed"},
			{Value: "50+", Label: "Satisfied clients"},
			{Value: "10+", Label: "Years of experience"},
			{Value: "24/7", Label: "Support"},
		},
		ContactText: "Reach out about a project or a quote. Our experienced engineers will propose the solution that best fits your needs.",
		Contact: []ContactDetail{
			{Label: "Email", Value: "contact@techcorp.jp"},
			{Label: "Tel", Value: "03-1234-5678"},
			{Label: "Address", Value: "TechCorp Building 10F, 1-1-1 Shibuya, Shibuya-ku, Tokyo"},
			{Label: "Hours", Value: "Weekdays 9:00-18:00"},
		},
	}
}
