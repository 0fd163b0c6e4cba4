package responder

import "github.com/wolfman30/careline-triage/internal/intent"

// Bucket names for template selection beyond the intent buckets.
const (
	bucketEmergency  = "emergency_override"
	bucketSymptoms   = "symptom_entities"
	bucketConditions = "condition_entities"
	bucketOther      = "other"
)

// Placeholders filled from extracted entities.
const (
	symptomsPlaceholder   = "{symptoms}"
	conditionsPlaceholder = "{conditions}"
)

var templates = map[string][]string{
	bucketEmergency: {
		"This sounds like it may be a medical emergency. Please call 911 or go to the nearest emergency room now. A member of our care team has been alerted.",
		"Your safety comes first. If you are in danger or your symptoms are severe, call 911 immediately. We have flagged your message for urgent review by our clinical staff.",
	},
	bucketSymptoms: {
		"Thank you for telling us about your {symptoms}. A nurse will review your message, and we can help you book a visit so a provider can take a closer look.",
		"I'm noting the {symptoms} you described. Please keep track of when it started and anything that makes it better or worse, and we'll connect you with the right provider.",
	},
	bucketConditions: {
		"We have your note about {conditions}. Your care team can review your treatment plan and any medications with you at your next visit.",
		"Managing {conditions} can be a lot. We'll pass your message to your provider, who can go over your care plan and medications with you.",
	},
	string(intent.Appointment): {
		"I can help with scheduling. Let us know a few days and times that work for you and we'll find an appointment.",
		"We'd be happy to get you on the schedule. Do you prefer a morning or afternoon appointment?",
	},
	string(intent.Prescription): {
		"I've noted your prescription request. Our pharmacy team will review your medication and allergy list and follow up within one business day.",
		"Refill requests usually take 1-2 business days. We'll confirm with your provider and let you know when your medication is ready.",
	},
	string(intent.Billing): {
		"Our billing team can help with that. We'll review your account and get back to you with the details.",
		"Thanks for reaching out about your bill. A billing specialist will look into your statement and contact you.",
	},
	string(intent.Technical): {
		"Sorry you're having trouble with the portal. Try signing out and back in, and let us know if the problem continues.",
		"Our support team can help you get back into your account. We'll follow up with steps to fix the issue.",
	},
	string(intent.Symptoms): {
		"Thank you for describing how you're feeling. A nurse will review your message and recommend next steps.",
		"We're sorry you're not feeling well. Our clinical team will review your message and help you decide on the right care.",
	},
	string(intent.Preventive): {
		"Staying on top of preventive care is a great idea. We can help you schedule a screening or annual physical.",
		"We can check which vaccines and screenings you're due for and set up a visit.",
	},
	string(intent.Emergency): {
		"If this is an emergency, please call 911 right away. We've flagged your message for our care team.",
		"Please seek emergency care immediately by calling 911. Our staff has been notified of your message.",
	},
	string(intent.MentalHealth): {
		"Thank you for reaching out. You don't have to go through this alone, and we can connect you with a behavioral health provider.",
		"It takes courage to ask for help. We'll connect you with a counselor, and if you're in crisis you can call or text 988 any time.",
	},
	string(intent.General): {
		"Thanks for your message. A member of our team will get back to you shortly.",
		"We've received your message and will follow up soon. Let us know if there's anything else we can help with.",
	},
	bucketOther: {
		"Thanks for contacting us. We'll review your message and respond as soon as possible.",
		"We've received your message. Someone from our team will be in touch.",
	},
}

var empathyPhrases = []string{
	"I'm sorry you're going through this.",
	"That sounds really difficult.",
	"I understand this is frustrating.",
}

const privacyNotice = "For your privacy, please avoid sharing identifiers such as your Social Security number in messages."
