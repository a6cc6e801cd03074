package pipeline

const triagePrompt = `Classify the phone call transcript below into exactly one category.

Categories:
- valid_sales: a real sales conversation between a human agent and a prospective customer
- ivr_only: automated messages only, no human agent took part
- spam: robocall, telemarketer or an irrelevant call
- incomplete: the call dropped or ended before any meaningful conversation
- wrong_number: the caller reached the wrong business, no sales opportunity

Transcript:
%s

Answer with JSON only:
{"classification": "valid_sales|ivr_only|spam|incomplete|wrong_number", "confidence": 0.0-1.0, "reason": "one sentence"}`

const extractionPrompt = `You read sales call transcripts for Nationwide Haul, a trucking and trailer company, and pull out contact details.

Transcript:
%s

Rules:
1. Rep: the agent usually opens with "Nationwide, <name>", "This is <name> with Nationwide" or "My name is <name>". Speech-to-text may write the company as "Nationwide Hall". Give the rep's first name only.
   Known reps: %s.
2. Caller: full name, business name, location as "City, ST", a callback number if one is given, and their role (owner, dispatcher, driver and so on). Use null when not mentioned.
3. Context: who placed the call (inbound, outbound or follow-up), a 5 to 15 word summary of what the caller needs, the products discussed (dump trailer, reefer, flatbed...) and how soon they need them.

Answer with JSON only:
{
  "rep": {"name": "first name or null", "introducedProperly": true, "introPattern": "exact intro phrase or null"},
  "caller": {"name": null, "company": null, "location": null, "phone": null, "role": null},
  "callContext": {
    "type": "inbound|outbound|follow-up|unknown",
    "needSummary": "",
    "productInterest": [],
    "urgency": "immediate|near-term|exploring|unknown"
  }
}`

const scoringPrompt = `You coach sales reps at Nationwide Haul (NWH), a trucking and trailer company.
Contact details were already extracted from this call. Score the call and write coaching notes; do not re-extract contacts.

Extracted details:
Rep: %[1]s
Caller: %[2]s
Company: %[3]s
Location: %[4]s
Need: %[5]s
Urgency: %[6]s
Products: %[7]s

Transcript:
%[8]s

Lead quality, 1 to 10:
- 9-10: decision maker, immediate need, perfect fit, complete information
- 7-8: has authority, near-term need, good fit
- 5-6: some influence, 1-3 month timeline, decent fit
- 3-4: limited authority, vague timeline, poor fit
- 1-2: no authority, no need or a mismatch
Red flags (spam, services NWH does not offer, competitor fishing, unethical requests) pull the score down hard.

Rep performance, 1 to 10 per category, citing evidence from the call:
callContext, objectiveClarity, informationGathering (business type, decision maker, timeline, budget, load details),
informationQuality, toneProfessionalism, listeningRatio (target 60/40 customer to rep), conversationGuidance,
objectionHandling, nextSteps, callClosing (appointment, follow-up or disposition).

Answer with JSON only:
{
  "repInfo": {"name": "%[1]s", "introducedProperly": true},
  "callerInfo": {"name": "%[2]s", "company": "%[3]s", "location": "%[4]s", "phone": null, "needSummary": "%[5]s"},
  "leadQuality": {
    "score": 0,
    "timeline": "immediate|near-term|1-3months|vague|none",
    "hasAuthority": false,
    "needIdentified": false,
    "serviceFit": "perfect|good|decent|poor|mismatch",
    "redFlags": [],
    "recommendedAction": "priority-1hr|follow-24hr|nurture-48-72hr|email-only|no-follow-up",
    "notes": ""
  },
  "callContext": {"type": "inbound|outbound|follow-up|unknown", "score": 0, "notes": ""},
  "objectiveClarity": {"score": 0, "notes": ""},
  "informationGathering": {"businessType": false, "decisionMaker": false, "timeline": false, "budgetIntent": false, "loadDetails": false, "score": 0, "notes": ""},
  "informationQuality": {"score": 0, "notes": ""},
  "toneProfessionalism": {"score": 0, "fillerWords": false, "unprofessionalLanguage": false, "notes": ""},
  "listeningRatio": {"score": 0, "estimatedRatio": "60/40", "notes": ""},
  "conversationGuidance": {"score": 0, "notes": ""},
  "objectionHandling": {"score": 0, "objectionsRaised": [], "notes": ""},
  "nextSteps": {"score": 0, "stepsSet": [], "notes": ""},
  "callClosing": {"outcome": "appointment|follow-up|disposition|none", "score": 0, "notes": ""},
  "strengths": ["specific, quote the transcript"],
  "weaknesses": ["specific, point at the moment"],
  "coachingInsights": ["actionable tip"],
  "internalAlerts": []
}`
