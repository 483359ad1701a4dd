package dialogue

// rule pairs a set of trigger phrases with either a fixed response or
// a sub-dialogue to start. A rule matches when the case-folded input
// contains any trigger phrase. Table order is significant: earlier
// rules shadow later ones, so the order below must stay exactly as
// the knowledge base documents it.
type rule struct {
	triggers []string
	response string
	starts   Mode // ModeNormal for terminal rules
}

var rules = []rule{
	// Tools onboarding
	{
		triggers: []string{"dashboard", "overview"},
		response: "The Solace AI Dashboard is your central hub for ministry insights. It shows key AI-driven metrics like prompt usage, giving you a quick overview of how AI is being used. You can also find notifications and quick access to all your AI tools here.",
	},
	{
		triggers: []string{"workflow", "automate", "bulletin announcement"},
		response: "AI Workflows help you automate repetitive ministry tasks, like drafting weekly bulletin announcements. You can create a workflow, add an 'AI Content Generation' step with a specific prompt (e.g., 'draft a concise bulletin announcement'), then set it to run on a schedule. Remember, all AI-generated content is human-reviewed!",
	},
	{
		triggers: []string{"analytics", "metrics", "impact"},
		response: "The Analytics Panel gives you insights into how your AI tools are performing. You can see AI content engagement (like email open rates) and prompt usage frequency. This helps you understand what's resonating and where AI is providing the most value. You can also export basic reports.",
	},
	{
		triggers: []string{"stephbot setup", "configure stephbot", "train stephbot", "my voice"},
		response: "To set up StephBot, go to 'AI Agents' in your menu. You can customize her persona (friendly, formal, pastoral) and 'train' her by uploading your church's FAQs or specific denominational info. The more data you provide, the better she can assist your unique ministry 24/7!",
	},
	{
		triggers: []string{"feedback", "bug", "suggestion", "improve product"},
		response: "Your feedback is vital for Solace AI's continuous improvement! You can provide feedback using the 'Provide Feedback' button below the chat, through quick survey pop-ups, or by contacting support directly. Your input helps us fix bugs and develop new features for ministry.",
	},
	// AI fluency
	{
		triggers: []string{"what is ai", "generative ai"},
		response: "Generative AI, like Solace AI, is a tool that can create new content (text, ideas) based on your instructions. Think of it as a very knowledgeable but naive assistant. It learns from patterns in vast amounts of data to generate responses.",
	},
	{
		triggers: []string{"4ds", "four ds", "ai fluency"},
		response: "The AI Fluency Journey focuses on the '4 Ds': Delegation (what AI can do), Description (how to prompt AI clearly), Discernment (critically evaluating AI output), and Diligence (responsible follow-through). These are key to effective and ethical AI use in ministry. Andy Morgan will guide you through this module!",
	},
	{
		triggers: []string{"example of delegation"},
		response: "Delegation is deciding what tasks AI can handle. For example, delegating the first draft of a weekly bulletin announcement or a sermon outline to AI, rather than writing it from scratch. You still review and refine, but AI handles the initial heavy lifting.",
	},
	{
		triggers: []string{"practice description"},
		response: "Great! Let's practice 'Description'. Imagine you need an AI to draft a short social media post for your church's upcoming potluck. Your first prompt is 'Write a social media post about a potluck.' How can you make that prompt more *descriptive* to get a better output? Try adding details about the event.",
		starts:   ModePromptPractice,
	},
	// Prompt engineering
	{
		triggers: []string{"how to write a good prompt", "prompt engineering"},
		response: "Prompt engineering is the art of crafting effective instructions for AI. A good prompt needs context, a clear persona (e.g., 'Act as a youth pastor'), desired tone, format, and specific constraints. The more detail you give, the better the AI's output will be. Andy Morgan's module will teach you how to master this for ministry tasks!",
	},
	{
		triggers: []string{"what's a persona", "persona priming"},
		response: "A 'persona' in prompting is telling the AI to adopt a specific role or identity, like 'Act as a seasoned theologian' or 'Respond as a friendly church administrator.' This helps the AI tailor its language and approach to your needs.",
	},
	{
		triggers: []string{"can you help me start a sermon prompt"},
		response: "Absolutely! Let's start building a sermon prompt. What scripture passage are you preaching on this week?",
		starts:   ModeSermonPromptAssist,
	},
	// Ethics and formation
	{
		triggers: []string{"ethical concerns", "responsible ai", "is ai biased"},
		response: "Ethical AI in Ministry is crucial. Key concerns include: **Bias & Fairness** (AI reflecting societal biases), **Transparency** (understanding AI's logic), **Accountability** (human responsibility), **Privacy**, **Spiritual Dependence**, and **Misinformation**. Andy Morgan's module will help you navigate these complex areas responsibly.",
	},
	{
		triggers: []string{"ethical dilemma", "practice ethics"},
		response: "Okay, let's consider an ethical dilemma. Imagine AI drafts a prayer for a sensitive congregational situation. What ethical principle from our training should you apply *first* when reviewing it?",
		starts:   ModeEthicsDilemma,
	},
	// Analytics and case studies
	{
		triggers: []string{"how is my church using ai", "ai usage data"},
		response: "I can give you some insights based on your church's simulated usage data. For detailed, real-time metrics, you'll want to check your 'Impact Dashboard' in the Solace platform. What specific data are you curious about?",
	},
	{
		triggers: []string{"most popular ai-generated content"},
		response: "Based on simulated data, your church's most popular AI-generated content recently has been 'Weekly Bulletin Announcements' and 'Social Media Posts for Events'. This suggests AI is helping you most with communications!",
	},
	{
		triggers: []string{"how can i see our ai impact"},
		response: "You can see your AI's impact in the 'Impact Dashboard' and 'Analytics Panel' within the Solace platform. These show metrics like prompt usage, content engagement, and help you track your 'Ministry Wins'.",
	},
}
