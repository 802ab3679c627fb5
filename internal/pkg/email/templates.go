package email

// BaseTemplate is the layout every HTML email is wrapped in
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
            background-color: #f6f7f9;
            color: #1f2933;
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
            border: 1px solid #e4e7eb;
        }
        .logo {
            text-align: center;
            margin-bottom: 24px;
        }
        .logo h1 {
            font-size: 28px;
            color: #0f766e;
            margin: 0;
        }
        h2 {
            font-size: 22px;
            margin: 0 0 16px;
        }
        p {
            color: #52606d;
            font-size: 16px;
            line-height: 1.6;
            margin: 0 0 16px;
        }
        .btn {
            display: inline-block;
            background: #0f766e;
            color: #ffffff !important;
            text-decoration: none;
            padding: 14px 28px;
            border-radius: 8px;
            font-weight: 600;
            font-size: 16px;
            margin: 16px 0;
        }
        .info-box {
            background: #f0fdfa;
            border-radius: 8px;
            padding: 16px;
            margin: 16px 0;
        }
        .footer {
            text-align: center;
            margin-top: 32px;
            color: #9aa5b1;
            font-size: 12px;
        }
    </style>
</head>
<body>
    <div class="container">
        <div class="card">
            <div class="logo">
                <h1>HairTrack</h1>
            </div>
            {{.Content}}
        </div>
        <div class="footer">
            <p>You receive this email because weekly reminders are enabled in your HairTrack profile.</p>
        </div>
    </div>
</body>
</html>
`

// WeeklyReminderTemplate asks the user for this week's scalp photos
const WeeklyReminderTemplate = `
<h2>Time for your weekly check-in</h2>
<p>Hi {{if .Name}}{{.Name}}{{else}}there{{end}},</p>
<p>Consistent weekly photos make your progress easy to see.</p>
{{if .LastScore}}
<div class="info-box">
    <p><strong>Last analysis:</strong> {{.LastDate}}</p>
    <p><strong>Overall score:</strong> {{.LastScore}}/100</p>
</div>
{{else}}
<p>You have not run your first analysis yet. It takes about two minutes.</p>
{{end}}
<a href="{{.CaptureURL}}" class="btn">Start analysis</a>
`

// WeeklyReminderText is the plain-text part of the reminder
const WeeklyReminderText = `Hi {{if .Name}}{{.Name}}{{else}}there{{end}},

Time for your weekly HairTrack check-in.
{{if .LastScore}}Last analysis: {{.LastDate}}, overall score {{.LastScore}}/100.
{{end}}
Start analysis: {{.CaptureURL}}
`
