package flow

import "time"

// PipelineKind names one of the three processing-step simulations.
type PipelineKind string

const (
	// PipelineAnalysis is the code-verification analysis screen.
	PipelineAnalysis PipelineKind = "analysis"
	// PipelinePayment is the payment-processing screen.
	PipelinePayment PipelineKind = "payment"
	// PipelineClaim is the single-shot promo-claim screen.
	PipelineClaim PipelineKind = "claim"
)

// pipelineSpec fixes the timing of one processing-step simulation. The
// settle delay keeps the 100% state on screen before the step advances.
type pipelineSpec struct {
	duration    time.Duration
	settleDelay time.Duration
	phases      []string
}

// analysisPhases are the labels cycled through during code verification.
var analysisPhases = []string{
	"Initialisation du protocole sécurisé (SSL)",
	"Connexion au serveur du fournisseur officiel",
	"Synchronisation de la base de données",
	"Vérification de la structure syntaxique",
	"Authentification du numéro de série",
	"Contrôle de validité régionale",
	"Cryptage des données (AES-256)",
	"Demande de confirmation serveur",
	"Finalisation du diagnostic",
	"Génération du certificat de validité",
}

// paymentPhases are the labels cycled through during payment processing.
var paymentPhases = []string{
	"Initialisation de la transaction sécurisée",
	"Vérification de la disponibilité du stock",
	"Connexion à la passerelle bancaire (3D Secure)",
	"Chiffrement des données de paiement",
	"Authentification auprès de l'émetteur",
	"Vérification anti-fraude",
	"Validation du solde",
	"Génération du code de recharge unique",
	"Enregistrement de la transaction",
	"Finalisation de la commande",
}

func defaultPipelineSpecs() map[PipelineKind]pipelineSpec {
	return map[PipelineKind]pipelineSpec{
		PipelineAnalysis: {
			duration:    20 * time.Second,
			settleDelay: 500 * time.Millisecond,
			phases:      analysisPhases,
		},
		PipelinePayment: {
			duration:    10 * time.Second,
			settleDelay: 1200 * time.Millisecond,
			phases:      paymentPhases,
		},
		PipelineClaim: {
			duration:    4 * time.Second,
			settleDelay: 1200 * time.Millisecond,
			phases:      nil,
		},
	}
}
