package analysis

import (
	"regexp"
	"strings"

	"triage_server/core/domain"
)

// ResponseTemplate is a canned customer reply with {{placeholder}} variables.
type ResponseTemplate struct {
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

const signature = `

Best regards,
{{agent_name}}
{{company_name}} Support`

var responseTemplates = map[domain.Category][]ResponseTemplate{
	domain.CategoryBilling: {
		{
			Name:    "Refund Request",
			Subject: "Re: Your Refund Request",
			Body: `Hi {{customer_name}},

Thank you for reaching out about your refund request.

I've reviewed your account and I can confirm that your refund of {{amount}} has been processed. You should see the credit back on your original payment method within 5-10 business days.

If you don't see the refund after 10 business days, please reply to this email and I'll investigate further.

Is there anything else I can help you with today?` + signature,
		},
		{
			Name:    "Billing Clarification",
			Subject: "Re: Your Billing Question",
			Body: `Hi {{customer_name}},

Thank you for contacting us about your recent charge.

I can see the charge of {{amount}} on {{date}} was for {{product/service}}. This is part of your {{subscription_type}} plan which renews {{billing_cycle}}.

If you'd like to make changes to your subscription or have questions about future charges, I'm happy to help!` + signature,
		},
		{
			Name:    "Payment Failed",
			Subject: "Re: Payment Issue",
			Body: `Hi {{customer_name}},

I see you're having trouble with a payment. Let me help!

Common reasons payments fail:
• Expired card or incorrect card details
• Insufficient funds
• Bank security blocks

To update your payment method:
1. Log in to your account
2. Go to Settings → Billing
3. Click "Update Payment Method"

If you continue to have issues, let me know and I can help troubleshoot further.` + signature,
		},
	},
	domain.CategoryTechnical: {
		{
			Name:    "Bug Report Acknowledgment",
			Subject: "Re: Bug Report",
			Body: `Hi {{customer_name}},

Thank you for reporting this issue. I've logged this with our engineering team as ticket #{{ticket_id}}.

To help us investigate faster, could you please provide:
• Your browser and version
• Steps to reproduce the issue
• Any error messages you saw
• Screenshots if available

We'll keep you updated on the progress. Our typical resolution time for issues like this is {{timeframe}}.` + signature,
		},
		{
			Name:    "Troubleshooting Steps",
			Subject: "Re: Technical Issue",
			Body: `Hi {{customer_name}},

I'm sorry you're experiencing this issue. Let's try some troubleshooting steps:

1. Clear your browser cache and cookies
2. Try a different browser (Chrome, Firefox, Safari)
3. Disable browser extensions temporarily
4. Try incognito/private browsing mode

If the issue persists after trying these steps, please reply with:
• What you were trying to do
• What happened instead
• Any error messages

We'll get this sorted out for you!` + signature,
		},
		{
			Name:    "Issue Resolved",
			Subject: "Re: Technical Issue - Resolved",
			Body: `Hi {{customer_name}},

Great news! The technical issue you reported has been resolved.

The problem was {{root_cause}}, and our team has {{fix_description}}.

Please try again and let me know if everything is working correctly. If you encounter any other issues, don't hesitate to reach out.

Thank you for your patience!` + signature,
		},
	},
	domain.CategoryOutage: {
		{
			Name:    "Outage Acknowledgment",
			Subject: "Re: Service Disruption",
			Body: `Hi {{customer_name}},

We're aware of the current service disruption and our team is actively working to resolve it.

Current status: {{status}}
Estimated resolution: {{eta}}

You can monitor our real-time status at: {{status_page_url}}

We sincerely apologize for any inconvenience this has caused. We'll send an update as soon as service is restored.` + signature,
		},
		{
			Name:    "Outage Resolved",
			Subject: "Re: Service Restored",
			Body: `Hi {{customer_name}},

I'm happy to report that the service disruption has been resolved. All systems are now operating normally.

What happened: {{incident_summary}}
Duration: {{downtime_duration}}
Resolution: {{resolution_summary}}

We understand this disruption impacted your work and we sincerely apologize. We're taking steps to prevent similar issues in the future.

If you have any concerns about data or need assistance catching up, please let me know.` + signature,
		},
	},
	domain.CategoryAccountAccess: {
		{
			Name:    "Password Reset",
			Subject: "Re: Account Access Help",
			Body: `Hi {{customer_name}},

I can help you regain access to your account!

To reset your password:
1. Go to {{login_url}}
2. Click "Forgot Password"
3. Enter your email: {{customer_email}}
4. Check your inbox for a reset link (valid for 24 hours)

If you don't receive the email within 5 minutes:
• Check your spam/junk folder
• Try adding {{support_email}} to your contacts
• Reply here and I can manually send a reset link` + signature,
		},
		{
			Name:    "2FA Recovery",
			Subject: "Re: Two-Factor Authentication Help",
			Body: `Hi {{customer_name}},

I understand you're having trouble with two-factor authentication.

For security purposes, I'll need to verify your identity before we can reset 2FA. Please provide:
1. The email address on your account
2. Last 4 digits of the payment method on file
3. Approximate date you created the account

Once verified, I can disable 2FA so you can set it up again with your new device.` + signature,
		},
		{
			Name:    "Account Unlocked",
			Subject: "Re: Account Unlocked",
			Body: `Hi {{customer_name}},

Good news! I've unlocked your account.

Your account was temporarily locked due to {{lock_reason}}. As a security measure, I recommend:
• Changing your password
• Reviewing recent account activity
• Enabling two-factor authentication if not already active

You should now be able to log in at {{login_url}}.` + signature,
		},
	},
	domain.CategoryFeatureRequest: {
		{
			Name:    "Feature Logged",
			Subject: "Re: Feature Suggestion",
			Body: `Hi {{customer_name}},

Thank you for sharing your idea about {{feature_summary}}! I love hearing suggestions from customers like you.

I've added this to our feature request board with reference #{{request_id}}. Our product team reviews all suggestions and prioritizes based on customer impact.

While I can't promise a timeline, I can tell you that features like yours often influence our roadmap. I'll make a note to update you if this gets scheduled for development.

Is there anything else I can help you with today?` + signature,
		},
		{
			Name:    "Workaround Available",
			Subject: "Re: Feature Request - Workaround",
			Body: `Hi {{customer_name}},

Great question! While we don't have that exact feature yet, here's a workaround that might help:

{{workaround_steps}}

I've also logged this as a feature request (#{{request_id}}) for our product team to consider.

Does this workaround help with what you're trying to accomplish?` + signature,
		},
	},
	domain.CategoryGeneralInquiry: {
		{
			Name:    "General Response",
			Subject: "Re: Your Question",
			Body: `Hi {{customer_name}},

Thank you for reaching out!

{{answer}}

For more information, you might find these resources helpful:
• {{resource_1}}
• {{resource_2}}

Is there anything else I can help you with?` + signature,
		},
		{
			Name:    "Pricing Inquiry",
			Subject: "Re: Pricing Question",
			Body: `Hi {{customer_name}},

Thanks for your interest in our pricing!

Here's a quick overview:
{{pricing_summary}}

You can see full pricing details at: {{pricing_url}}

If you'd like to discuss which plan is right for your needs, I'm happy to schedule a call or answer questions here.` + signature,
		},
	},
	domain.CategoryFeedback: {
		{
			Name:    "Thank You",
			Subject: "Re: Thank You for the Kind Words!",
			Body: `Hi {{customer_name}},

Wow, thank you so much for taking the time to share this feedback! Messages like yours make our day.

I've shared your kind words with the team and it really means a lot to all of us.

If there's ever anything we can do to make your experience even better, please don't hesitate to reach out.

Thank you for being a valued customer!` + signature,
		},
		{
			Name:    "Feedback Acknowledged",
			Subject: "Re: Your Feedback",
			Body: `Hi {{customer_name}},

Thank you for sharing your thoughts with us! We really appreciate customers who take the time to help us improve.

I've passed your feedback along to the appropriate team. Every piece of feedback helps us make better decisions.

If you have any other thoughts or suggestions in the future, we'd love to hear them.` + signature,
		},
	},
	domain.CategoryUnknown: {
		{
			Name:    "Clarification Needed",
			Subject: "Re: Your Message",
			Body: `Hi {{customer_name}},

Thank you for reaching out! I want to make sure I understand your request correctly.

Could you please provide a bit more detail about:
• What you're trying to accomplish
• Any error messages or issues you're seeing
• Your account email or ID

This will help me get you to the right team and provide the best assistance.

Looking forward to your reply!` + signature,
		},
	},
}

// ResponseTemplatesFor returns a copy of the category's replies, falling back to Unknown.
func ResponseTemplatesFor(category domain.Category) []ResponseTemplate {
	list, ok := responseTemplates[category]
	if !ok {
		list = responseTemplates[domain.CategoryUnknown]
	}
	return append([]ResponseTemplate(nil), list...)
}

// placeholderPattern matches {{key}} first, then {key}.
var placeholderPattern = regexp.MustCompile(`\{\{([^{}]+)\}\}|\{([^{}]+)\}`)

func placeholderKey(sub []string) string {
	if sub[1] != "" {
		return sub[1]
	}
	return sub[2]
}

// FillTemplate substitutes known placeholders in one pass; inserted values are not rescanned
// and unknown placeholders are left verbatim.
func FillTemplate(body string, values map[string]string) string {
	if len(values) == 0 {
		return body
	}
	var b strings.Builder
	b.Grow(len(body))
	last := 0
	for _, loc := range placeholderPattern.FindAllStringSubmatchIndex(body, -1) {
		key := ""
		if loc[2] >= 0 {
			key = body[loc[2]:loc[3]]
		} else {
			key = body[loc[4]:loc[5]]
		}
		v, ok := values[strings.TrimSpace(key)]
		if !ok {
			continue
		}
		b.WriteString(body[last:loc[0]])
		b.WriteString(v)
		last = loc[1]
	}
	b.WriteString(body[last:])
	return b.String()
}

// Fill returns the template with its body filled.
func (t ResponseTemplate) Fill(values map[string]string) ResponseTemplate {
	t.Body = FillTemplate(t.Body, values)
	t.Subject = FillTemplate(t.Subject, values)
	return t
}

// Placeholders lists distinct keys in order of first appearance.
func Placeholders(body string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, sub := range placeholderPattern.FindAllStringSubmatch(body, -1) {
		key := strings.TrimSpace(placeholderKey(sub))
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, key)
	}
	return out
}
