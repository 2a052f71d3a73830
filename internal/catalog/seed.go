package catalog

import "github.com/ashureev/careercompass/internal/domain"

// SeedCareers returns the ranked career matches shown on the results page.
func SeedCareers() []domain.CareerMatch {
	return []domain.CareerMatch{
		{
			ID:          "1",
			Title:       "Software Engineer",
			Match:       94,
			Salary:      "$90k - $150k",
			Growth:      "22%",
			Level:       domain.CareerLevel,
			Skills:      []string{"Problem Solving", "Logical Thinking", "Creativity"},
			Description: "Design, develop, and maintain software applications using various programming languages and frameworks.",
		},
		{
			ID:          "2",
			Title:       "UX/UI Designer",
			Match:       89,
			Salary:      "$75k - $120k",
			Growth:      "16%",
			Level:       domain.CareerLevel,
			Skills:      []string{"Creativity", "Empathy", "Visual Design"},
			Description: "Create intuitive and engaging user experiences for digital products through research and design.",
		},
		{
			ID:          "3",
			Title:       "Data Scientist",
			Match:       85,
			Salary:      "$95k - $160k",
			Growth:      "36%",
			Level:       domain.CareerLevel,
			Skills:      []string{"Analytical Thinking", "Mathematics", "Programming"},
			Description: "Analyze complex data sets to help organizations make data-driven decisions and predictions.",
		},
		{
			ID:          "4",
			Title:       "Product Manager",
			Match:       82,
			Salary:      "$100k - $170k",
			Growth:      "19%",
			Level:       domain.CareerLevel,
			Skills:      []string{"Leadership", "Communication", "Strategic Thinking"},
			Description: "Guide product development from conception to launch, balancing user needs with business goals.",
		},
		{
			ID:          "5",
			Title:       "Marketing Manager",
			Match:       78,
			Salary:      "$70k - $130k",
			Growth:      "10%",
			Level:       domain.CareerLevel,
			Skills:      []string{"Creativity", "Communication", "Strategy"},
			Description: "Develop and execute marketing strategies to promote products and build brand awareness.",
		},
	}
}

// SeedRoadmap returns the four-phase roadmap template.
func SeedRoadmap() []domain.RoadmapPhase {
	return []domain.RoadmapPhase{
		{
			ID:       1,
			Phase:    "Foundation",
			Title:    "Learn the Fundamentals",
			Duration: "3-6 months",
			Items: []string{
				"Master programming basics (Python, JavaScript)",
				"Understand data structures and algorithms",
				"Learn version control with Git",
				"Practice problem-solving on coding platforms",
			},
		},
		{
			ID:       2,
			Phase:    "Skill Building",
			Title:    "Develop Core Skills",
			Duration: "6-12 months",
			Items: []string{
				"Build 3-5 portfolio projects",
				"Learn web development frameworks (React, Node.js)",
				"Study database design and SQL",
				"Contribute to open-source projects",
			},
		},
		{
			ID:       3,
			Phase:    "Experience",
			Title:    "Gain Practical Experience",
			Duration: "6-12 months",
			Items: []string{
				"Apply for internships or junior positions",
				"Network with professionals in the field",
				"Attend tech meetups and conferences",
				"Work on real-world client projects",
			},
		},
		{
			ID:       4,
			Phase:    "Specialization",
			Title:    "Advanced Learning & Certification",
			Duration: "Ongoing",
			Items: []string{
				"Choose a specialization (Frontend, Backend, Full-stack)",
				"Earn relevant certifications",
				"Master advanced concepts and tools",
				"Build a strong professional network",
			},
		},
	}
}

// SeedFeatures returns the home page feature cards.
func SeedFeatures() []domain.Feature {
	return []domain.Feature{
		{Title: "Personalized Assessment", Description: "AI-powered chat to understand your strengths, interests, and goals"},
		{Title: "Career Matching", Description: "Get matched with careers that fit your unique profile and aspirations"},
		{Title: "AI Mentor Guidance", Description: "24/7 access to your personal AI career mentor for ongoing support"},
		{Title: "Dynamic Roadmaps", Description: "Step-by-step paths tailored to help you achieve your career goals"},
	}
}
