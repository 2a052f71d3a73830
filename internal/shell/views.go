package shell

import (
	"github.com/ashureev/careercompass/internal/catalog"
	"github.com/ashureev/careercompass/internal/domain"
	"github.com/ashureev/careercompass/internal/metrics"
)

// AppName is shown in every page header.
const AppName = "CareerCompass"

// Link is a navigation affordance.
type Link struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

// View is a declarative page description.
type View struct {
	Name   ViewName          `json:"name"`
	Path   string            `json:"path"`
	Title  string            `json:"title"`
	Brand  Link              `json:"brand"`
	Nav    []Link            `json:"nav"`
	Params map[string]string `json:"params,omitempty"`
	Data   any               `json:"data"`
}

// HomeData backs the home view.
type HomeData struct {
	Headline     string           `json:"headline"`
	Tagline      string           `json:"tagline"`
	Actions      []Link           `json:"actions"`
	FeatureTitle string           `json:"feature_title"`
	FeatureIntro string           `json:"feature_intro"`
	Features     []domain.Feature `json:"features"`
	CallToAction CallToAction     `json:"call_to_action"`
}

// CallToAction is a closing banner with one action.
type CallToAction struct {
	Heading string `json:"heading"`
	Text    string `json:"text"`
	Action  Link   `json:"action"`
}

// AssessmentData backs the assessment view.
type AssessmentData struct {
	Heading        string `json:"heading"`
	Opening        string `json:"opening"`
	Questions      int    `json:"questions"`
	Placeholder    string `json:"placeholder"`
	SubmitEndpoint string `json:"submit_endpoint"`
	StreamEndpoint string `json:"stream_endpoint"`
}

// CareerCard is one ranked results entry.
type CareerCard struct {
	Rank        int                `json:"rank"`
	Career      domain.CareerMatch `json:"career"`
	RoadmapPath string             `json:"roadmap_path"`
}

// ResultsData backs the results view.
type ResultsData struct {
	Heading    string         `json:"heading"`
	Subheading string         `json:"subheading"`
	Careers    []CareerCard   `json:"careers"`
	Actions    []CallToAction `json:"actions"`
}

// RoadmapData backs the roadmap view.
type RoadmapData struct {
	Heading      string         `json:"heading"`
	Intro        string         `json:"intro"`
	Roadmap      domain.Roadmap `json:"roadmap"`
	StartPhaseID int            `json:"start_phase_id,omitempty"`
	Back         Link           `json:"back"`
	Actions      []CallToAction `json:"actions"`
}

// NotFoundData backs the not-found view.
type NotFoundData struct {
	Message string `json:"message"`
	Home    Link   `json:"home"`
}

// AssessmentInfo describes the assessment wiring rendered on its page.
type AssessmentInfo struct {
	Opening        string
	Questions      int
	SubmitEndpoint string
	StreamEndpoint string
}

// Shell renders views from the static catalogs.
type Shell struct {
	catalog    *catalog.Catalog
	assessment AssessmentInfo
}

// New creates a shell over a catalog.
func New(c *catalog.Catalog, info AssessmentInfo) *Shell {
	return &Shell{catalog: c, assessment: info}
}

// View resolves and renders path.
func (s *Shell) View(path string) View {
	return s.Render(Resolve(path))
}

// Render builds the view for a resolved route.
func (s *Shell) Render(route Route) View {
	metrics.ViewRenders.WithLabelValues(string(route.View)).Inc()

	v := View{
		Name:   route.View,
		Path:   route.Path,
		Brand:  Link{Label: AppName, Path: PathHome},
		Params: route.Params,
	}

	switch route.View {
	case ViewHome:
		v.Title = AppName
		v.Nav = []Link{{Label: "Get Started", Path: PathAssessment}}
		v.Data = s.home()
	case ViewAssessment:
		v.Title = "Career Assessment"
		v.Nav = []Link{{Label: "Back to Home", Path: PathHome}}
		v.Data = s.assessmentData()
	case ViewResults:
		v.Title = "Your Career Matches"
		v.Nav = []Link{
			{Label: "Retake Assessment", Path: PathAssessment},
			{Label: "Home", Path: PathHome},
		}
		v.Data = s.results()
	case ViewRoadmap:
		roadmap := s.catalog.Roadmap(route.CareerID())
		v.Title = "Career Roadmap: " + roadmap.CareerTitle
		v.Nav = []Link{
			{Label: "Back to Results", Path: PathResults},
			{Label: "Home", Path: PathHome},
		}
		v.Data = s.roadmap(roadmap)
	default:
		v.Name = ViewNotFound
		v.Title = "Page not found"
		v.Nav = []Link{{Label: "Home", Path: PathHome}}
		v.Data = NotFoundData{
			Message: "Oops! Page not found",
			Home:    Link{Label: "Return to Home", Path: PathHome},
		}
	}
	return v
}

func (s *Shell) home() HomeData {
	return HomeData{
		Headline: "Discover Your Perfect Career Path",
		Tagline:  "AI-powered guidance to help you find careers that match your skills, interests, and goals. Start your journey today.",
		Actions: []Link{
			{Label: "Start Assessment", Path: PathAssessment},
			{Label: "View Sample Results", Path: PathResults},
		},
		FeatureTitle: "How CareerCompass Works",
		FeatureIntro: "Our AI-powered platform guides you through every step of your career discovery journey",
		Features:     s.catalog.Features(),
		CallToAction: CallToAction{
			Heading: "Ready to Find Your Path?",
			Text:    "Join thousands of professionals who've discovered their ideal career with CareerCompass",
			Action:  Link{Label: "Get Started Free", Path: PathAssessment},
		},
	}
}

func (s *Shell) assessmentData() AssessmentData {
	return AssessmentData{
		Heading:        "Career Assessment",
		Opening:        s.assessment.Opening,
		Questions:      s.assessment.Questions,
		Placeholder:    "Type your response...",
		SubmitEndpoint: s.assessment.SubmitEndpoint,
		StreamEndpoint: s.assessment.StreamEndpoint,
	}
}

func (s *Shell) results() ResultsData {
	careers := s.catalog.Careers()
	cards := make([]CareerCard, len(careers))
	for i, c := range careers {
		cards[i] = CareerCard{Rank: i + 1, Career: c, RoadmapPath: RoadmapPath(c.ID)}
	}

	roadmapAction := Link{Label: "View Roadmap"}
	if top, ok := s.catalog.TopCareer(); ok {
		roadmapAction.Path = RoadmapPath(top.ID)
	}

	return ResultsData{
		Heading:    "Your Career Matches",
		Subheading: "Based on your assessment, here are the top 5 careers that align with your skills and interests",
		Careers:    cards,
		Actions: []CallToAction{
			{
				Heading: "Need More Guidance?",
				Text:    "Chat with your AI mentor for personalized career advice and answers to your questions.",
				Action:  Link{Label: "Chat with AI Mentor"},
			},
			{
				Heading: "Explore Career Roadmaps",
				Text:    "Get detailed step-by-step plans to achieve your dream career goals.",
				Action:  roadmapAction,
			},
		},
	}
}

func (s *Shell) roadmap(r domain.Roadmap) RoadmapData {
	data := RoadmapData{
		Heading: "Career Roadmap: " + r.CareerTitle,
		Intro:   "Follow this personalized roadmap to achieve your career goals. Each phase builds on the previous one to help you progress systematically.",
		Roadmap: r,
		Back:    Link{Label: "Back to Results", Path: PathResults},
		// Neither action has a destination page yet.
		Actions: []CallToAction{
			{
				Heading: "Track Your Progress",
				Text:    "Mark completed milestones and see how far you've come in your career journey.",
				Action:  Link{Label: "View Progress Dashboard"},
			},
			{
				Heading: "Get AI Guidance",
				Text:    "Have questions about any step? Chat with your AI mentor for personalized advice.",
				Action:  Link{Label: "Chat with AI Mentor"},
			},
		},
	}
	if len(r.Phases) > 0 {
		data.StartPhaseID = r.Phases[0].ID
	}
	return data
}
