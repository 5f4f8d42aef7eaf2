package email

// Email templates in HTML format

// BaseTemplate is the base layout for all emails
const BaseTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <style>
        body {
            margin: 0;
            padding: 0;
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            background-color: #faf7f2;
            color: #2b2b2b;
        }
        .container {
            max-width: 600px;
            margin: 0 auto;
            padding: 40px 20px;
        }
        .card {
            background: #ffffff;
            border-radius: 12px;
            padding: 32px;
            border: 1px solid #e8e2d8;
        }
        .logo {
            text-align: center;
            margin-bottom: 24px;
        }
        .logo h1 {
            font-size: 28px;
            color: #9a6b2f;
            margin: 0;
        }
        h2 {
            color: #2b2b2b;
            font-size: 24px;
            margin: 0 0 16px;
        }
        p {
            color: #5a5a5a;
            font-size: 16px;
            line-height: 1.6;
            margin: 0 0 16px;
        }
        .btn {
            display: inline-block;
            background: #9a6b2f;
            color: #ffffff !important;
            text-decoration: none;
            padding: 14px 28px;
            border-radius: 8px;
            font-weight: 600;
            font-size: 16px;
            margin: 16px 0;
        }
        .footer {
            text-align: center;
            margin-top: 32px;
            color: #999999;
            font-size: 12px;
        }
        .highlight {
            color: #9a6b2f;
            font-weight: 600;
        }
        .info-box {
            background: #f6f1e9;
            border-radius: 8px;
            padding: 16px;
            margin: 16px 0;
        }
    </style>
</head>
<body>
    <div class="container">
        <div class="card">
            <div class="logo">
                <h1>Banquet</h1>
            </div>
            {{.Content}}
        </div>
        <div class="footer">
            <p>© 2026 Banquet. All rights reserved.</p>
            <p>You received this email because you have an account on banquet.app</p>
        </div>
    </div>
</body>
</html>
`

// WelcomeTemplate - welcome email for new users
const WelcomeTemplate = `
<h2>Welcome to Banquet! 🎉</h2>
<p>Hi, <span class="highlight">{{.UserName}}</span>!</p>
<p>Your account has been created.</p>
{{if eq .Role "owner"}}
<p>What's next?</p>
<ul>
    <li>Register your hall and upload the required documents</li>
    <li>Add venues and set hourly pricing</li>
    <li>Start receiving bookings once your hall is approved</li>
</ul>
{{else}}
<p>What's next?</p>
<ul>
    <li>Browse halls near you</li>
    <li>Pick a venue, date and time slot</li>
    <li>Pay the full amount or a first installment to confirm</li>
</ul>
{{end}}
<a href="{{.DashboardURL}}" class="btn">Go to dashboard</a>
`

// BookingCreatedTemplate - booking placed, awaiting payment
const BookingCreatedTemplate = `
<h2>Booking placed</h2>
<p>Your booking at <strong>{{.VenueName}}</strong> is pending payment.</p>
<div class="info-box">
    <p><strong>Date:</strong> {{.Date}}</p>
    <p><strong>Time:</strong> {{.TimeRange}}</p>
    <p><strong>Amount due:</strong> {{.Amount}}</p>
</div>
<p>The slot is held for you until the payment window expires.</p>
<a href="{{.BookingURL}}" class="btn">Complete payment</a>
`

// BookingConfirmedTemplate - booking confirmed after payment
const BookingConfirmedTemplate = `
<h2>🎉 Booking confirmed!</h2>
<p>Your booking at <strong>{{.VenueName}}</strong> is confirmed.</p>
<div class="info-box">
    <p><strong>Date:</strong> {{.Date}}</p>
    <p><strong>Time:</strong> {{.TimeRange}}</p>
</div>
<a href="{{.BookingURL}}" class="btn">View booking</a>
`

// BookingCancelledTemplate - booking cancelled
const BookingCancelledTemplate = `
<h2>Booking cancelled</h2>
<p>Your booking at <strong>{{.VenueName}}</strong> on {{.Date}} has been cancelled.</p>
{{if .Reason}}
<div class="info-box">
    <p><strong>Reason:</strong> {{.Reason}}</p>
</div>
{{end}}
<p>If a refund is due, it will be processed according to the cancellation policy.</p>
`

// BookingCompletedTemplate - post-event thank you
const BookingCompletedTemplate = `
<h2>Thank you!</h2>
<p>We hope your event at <strong>{{.VenueName}}</strong> on {{.Date}} went wonderfully.</p>
<p>We'd love to host you again.</p>
`

// PaymentReceivedTemplate - payment confirmation
const PaymentReceivedTemplate = `
<h2>Payment received</h2>
<p>We received your payment for <strong>{{.VenueName}}</strong>.</p>
<div class="info-box">
    <p><strong>Amount:</strong> {{.Amount}}</p>
    <p><strong>Reference:</strong> {{.Reference}}</p>
</div>
`

// RefundIssuedTemplate - refund notification
const RefundIssuedTemplate = `
<h2>Refund issued</h2>
<p>A refund for your booking at <strong>{{.VenueName}}</strong> has been issued.</p>
<div class="info-box">
    <p><strong>Amount:</strong> {{.Amount}}</p>
</div>
<p>Depending on your bank, it may take a few business days to appear.</p>
`

// HallApprovedTemplate - hall listing approved
const HallApprovedTemplate = `
<h2>✅ Hall approved</h2>
<p>Your hall <strong>{{.HallName}}</strong> has been approved and is now visible to customers.</p>
<a href="{{.DashboardURL}}" class="btn">Manage your hall</a>
`

// HallRejectedTemplate - hall listing rejected
const HallRejectedTemplate = `
<h2>Hall listing reviewed</h2>
<p>Unfortunately your hall <strong>{{.HallName}}</strong> was not approved.</p>
{{if .Reason}}
<div class="info-box">
    <p><strong>Reason:</strong> {{.Reason}}</p>
</div>
{{end}}
<p>You can update the listing and documents and submit it again.</p>
`
