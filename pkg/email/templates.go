package email

// Tek template dosyası; isimli bloklar ExecuteTemplate ile seçiliyor.
const emailTemplates = `
{{define "welcome"}}
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Welcome to HomeBiz, {{.Name}}!</h2>
  <p>Your account is ready. Browse local businesses or, if you are a seller,
  pick a subscription package and publish your first listing.</p>
</div>
{{end}}

{{define "subscription_activated"}}
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Subscription activated</h2>
  <p>Hi {{.Name}},</p>
  <p>Your <strong>{{.PackageName}}</strong> subscription
  ({{printf "%.2f" .Price}} {{.Currency}}) is now active.</p>
  <p>It is valid until <strong>{{.ExpiresAt.Format "2 January 2006"}}</strong>.
  You can now publish business listings.</p>
</div>
{{end}}

{{define "subscription_expiry_warning"}}
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Subscription expiring soon</h2>
  <p>Hi {{.Name}},</p>
  <p>Your <strong>{{.PackageName}}</strong> subscription expires in
  <strong>{{.DaysLeft}} days</strong>, on
  {{.ExpiresAt.Format "2 January 2006"}}.</p>
  <p>Renew from your dashboard to keep your listings visible.</p>
</div>
{{end}}
`
