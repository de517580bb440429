package googleauth

const successTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Authorization complete</title>
<style>
body { font-family: -apple-system, system-ui, sans-serif; margin: 4rem auto; max-width: 32rem; text-align: center; color: #1f2937; }
h1 { color: #16a34a; }
p { color: #6b7280; }
</style>
</head>
<body>
<h1>Authorization complete</h1>
<p>Google Sheets access has been granted.</p>
<p>You can close this window. It will stop responding in {{.CountdownSeconds}} seconds.</p>
</body>
</html>
`

const errorTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Authorization failed</title>
<style>
body { font-family: -apple-system, system-ui, sans-serif; margin: 4rem auto; max-width: 32rem; text-align: center; color: #1f2937; }
h1 { color: #dc2626; }
</style>
</head>
<body>
<h1>Authorization failed</h1>
<p>{{.Error}}</p>
</body>
</html>
`

const cancelledTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Authorization cancelled</title>
<style>
body { font-family: -apple-system, system-ui, sans-serif; margin: 4rem auto; max-width: 32rem; text-align: center; color: #1f2937; }
</style>
</head>
<body>
<h1>Authorization cancelled</h1>
<p>No changes were made. You can close this window.</p>
</body>
</html>
`
