package intent

// Corpus returns a copy of the built-in labeled training set.
func Corpus() []Example {
	out := make([]Example, len(corpus))
	copy(out, corpus)
	return out
}

var corpus = []Example{
	{"Hello, I have a general question about your services", General},
	{"What are your office hours on weekends", General},
	{"Where is the clinic located and is there parking", General},
	{"Can you tell me more about the services you offer", General},
	{"I would like some information about your practice", General},
	{"Thank you for the help yesterday", General},
	{"Who should I contact with a general question", General},
	{"Do you accept new patients at this location", General},

	{"I need to schedule an appointment with my doctor", Appointment},
	{"Can I book a checkup for next week", Appointment},
	{"I want to reschedule my appointment to Friday", Appointment},
	{"Please cancel my appointment tomorrow", Appointment},
	{"Is there an available appointment slot this afternoon", Appointment},
	{"I need to schedule a checkup with Dr. Smith", Appointment},
	{"When is my next appointment scheduled", Appointment},
	{"Can I see the doctor sooner, I need an earlier visit", Appointment},
	{"Book me a follow-up visit after my test results", Appointment},

	{"I need a refill on my prescription", Prescription},
	{"My pharmacy has not received my prescription yet", Prescription},
	{"Can you renew my blood pressure medication", Prescription},
	{"I am running out of my pills, please send a refill", Prescription},
	{"What dosage of the medication should I be taking", Prescription},
	{"Please send my prescription to a different pharmacy", Prescription},
	{"My insurance denied coverage for my medication refill", Prescription},
	{"I have questions about side effects of my new prescription", Prescription},

	{"I have a question about my bill", Billing},
	{"Why was I charged twice for my last visit", Billing},
	{"How can I pay my balance online", Billing},
	{"My insurance claim was denied, what do I owe", Billing},
	{"I need an itemized invoice for my records", Billing},
	{"Can I set up a payment plan for the charges", Billing},
	{"The copay amount on my statement looks wrong", Billing},
	{"Do you accept my insurance plan for billing", Billing},

	{"I cannot log in to the patient portal", Technical},
	{"The website keeps showing an error when I upload a file", Technical},
	{"I forgot my password and the reset link does not work", Technical},
	{"The app crashes when I open my messages", Technical},
	{"How do I join the video visit, the link is broken", Technical},
	{"My account is locked after too many login attempts", Technical},
	{"The portal page will not load on my phone browser", Technical},

	{"I have had a headache and fever for three days", Symptoms},
	{"My throat is sore and I keep coughing", Symptoms},
	{"I have a rash on my arm that is itchy", Symptoms},
	{"My stomach hurts and I feel nauseous after eating", Symptoms},
	{"I have been feeling dizzy and tired all week", Symptoms},
	{"My knee is swollen and painful when I walk", Symptoms},
	{"I have a persistent cough and mild fever", Symptoms},
	{"My back pain is getting worse every day", Symptoms},
	{"I have diarrhea and stomach cramps since yesterday", Symptoms},

	{"When should I get my flu shot this year", Preventive},
	{"Am I due for a mammogram screening", Preventive},
	{"I would like to get vaccinated against shingles", Preventive},
	{"What preventive screenings do you recommend at my age", Preventive},
	{"Is it time for my annual physical exam and blood work", Preventive},
	{"Do I need a colonoscopy screening at fifty", Preventive},
	{"Which vaccines does my child need before school", Preventive},
	{"How often should I have my cholesterol screened", Preventive},

	{"I have severe chest pain and can't breathe", Emergency},
	{"My father is unconscious and not responding", Emergency},
	{"Someone is bleeding heavily and it won't stop", Emergency},
	{"I think I am having a heart attack", Emergency},
	{"She is having a seizure right now", Emergency},
	{"My face is drooping and my arm is numb, maybe a stroke", Emergency},
	{"I took too many pills, possible overdose", Emergency},
	{"Severe allergic reaction, my throat is swelling shut", Emergency},

	{"I have been feeling very depressed lately", MentalHealth},
	{"My anxiety is getting worse and I can't sleep", MentalHealth},
	{"I would like to talk to a therapist or counselor", MentalHealth},
	{"I feel hopeless and overwhelmed most days", MentalHealth},
	{"I keep having panic attacks at work", MentalHealth},
	{"Can I get a referral for mental health counseling", MentalHealth},
	{"I am struggling with stress and loneliness", MentalHealth},
}
