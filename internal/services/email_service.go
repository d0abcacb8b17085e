package services

import "fmt"

// SendPasswordResetEmail envía el correo de recuperación de contraseña con el
// enlace que incluye el token temporal
func SendPasswordResetEmail(email, token string) error {
	resetLink := fmt.Sprintf("http://localhost:3000/reset-password?token=%s", token)

	subject := "Recuperación de contraseña"
	body := fmt.Sprintf(`
	<html>
	<body>
		<h2>Recuperación de contraseña</h2>
		<p>Has solicitado restablecer tu contraseña.</p>
		<p>Haz clic en el siguiente enlace para continuar:</p>
		<a href="%s">Restablecer contraseña</a>
		<p>Este enlace expirará en 24 horas.</p>
		<p>Si no solicitaste este cambio, puedes ignorar este correo.</p>
	</body>
	</html>
	`, resetLink)

	return sendEmail(email, subject, body)
}
