package cli

var ReadSecretValue = readSecretValue
